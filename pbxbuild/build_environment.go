// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pbxbuild

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
	"github.com/xcbuild/xcbuild/xcsdk"
)

// Build system specifications whose option defaults sit below every
// target's settings.
const (
	CoreBuildSystem   = "com.apple.build-system.core"
	NativeBuildSystem = "com.apple.build-system.native"
)

// A BuildEnvironment holds the databases shared by every build: the
// specifications, the SDK registry and the default settings.  It is
// read-only once constructed.
type BuildEnvironment struct {
	FS     billy.Filesystem
	Specs  *pbxspec.Manager
	SDKs   *xcsdk.Manager
	Logger *slog.Logger

	base *pbxsetting.Environment
}

// NewBuildEnvironment links the platforms of sdks into the domain chain of
// specs and composes the base settings: build system defaults above
// defaults, highest priority first.
func NewBuildEnvironment(fs billy.Filesystem, specs *pbxspec.Manager, sdks *xcsdk.Manager, defaults []pbxsetting.Level, logger *slog.Logger) *BuildEnvironment {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range sdks.Platforms {
		if p.ParentDomain != "" {
			specs.SetDomainParent(p.Name, p.ParentDomain)
		}
	}

	var levels []pbxsetting.Level
	for _, id := range []string{NativeBuildSystem, CoreBuildSystem} {
		bs, err := specs.BuildSystem(id)
		if err != nil {
			logger.Debug("build system not available", "spec", id, "error", err)
			continue
		}
		levels = append(levels, bs.DefaultSettings())
	}
	levels = append(levels, defaults...)

	return &BuildEnvironment{
		FS:     fs,
		Specs:  specs,
		SDKs:   sdks,
		Logger: logger,
		base:   pbxsetting.NewEnvironment(levels, nil).WithLogger(logger),
	}
}

// DefaultLevels returns the DefaultSettings levels for a process with the
// given environment variables and user.
func DefaultLevels(environ []string, user pbxsetting.LocalUser) []pbxsetting.Level {
	return []pbxsetting.Level{
		pbxsetting.EnvironmentLevel(environ),
		pbxsetting.InternalLevel(),
		pbxsetting.LocalLevel(user),
		pbxsetting.SystemLevel(),
		pbxsetting.ArchitectureLevel(),
		pbxsetting.BuildLevel(),
	}
}

// Base is the environment every target environment defers to.
func (b *BuildEnvironment) Base() *pbxsetting.Environment {
	return b.base
}
