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

package xcbuild

import (
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// DefaultDeveloperRoot is used when neither the configuration nor
// DEVELOPER_DIR names one.
const DefaultDeveloperRoot = "/Applications/Xcode.app/Contents/Developer"

var (
	ErrNoWorkspace      = errors.New("no workspace or project given")
	ErrSchemeAndTargets = errors.New("a scheme cannot be combined with target selection")
	ErrWorkspaceScheme  = errors.New("building a workspace requires a scheme")
)

// Config selects what a Context loads and describes.
type Config struct {
	// Workspace is the path of an .xcworkspace or .xcodeproj bundle.
	Workspace string
	Scheme    string
	// Targets names the targets of a build without a scheme.  With neither
	// Scheme nor Targets every target is built.
	Targets    []string
	AllTargets bool

	Action        string
	Configuration string
	SDK           string
	Archs         []string
	// Overrides are NAME=VALUE settings above every project setting.
	Overrides []string

	DeveloperRoot string
	// Registry is the HCL SDK registry.  It defaults to registry.hcl in
	// DeveloperRoot.
	Registry string
	// Specs lists specification directories as "domain=path" or "path"
	// for the default domain.  It defaults to Specs/default in
	// DeveloperRoot.
	Specs       []string
	DerivedData string

	// Jobs bounds how many targets resolve at once.  It defaults to the
	// number of CPUs.
	Jobs    int
	Environ []string
	User    pbxsetting.LocalUser

	specDomains []specDomain
	overrides   []pbxsetting.Setting
}

type specDomain struct {
	Domain string
	Path   string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	c := cfg
	if c.Workspace == "" {
		return nil, ErrNoWorkspace
	}
	if c.Scheme != "" && (len(c.Targets) > 0 || c.AllTargets) {
		return nil, ErrSchemeAndTargets
	}
	if c.Scheme == "" && strings.HasSuffix(c.Workspace, ".xcworkspace") {
		return nil, ErrWorkspaceScheme
	}
	if c.Action == "" {
		c.Action = "build"
	}
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}

	if c.DeveloperRoot == "" {
		c.DeveloperRoot = environValue(c.Environ, "DEVELOPER_DIR")
	}
	if c.DeveloperRoot == "" {
		c.DeveloperRoot = DefaultDeveloperRoot
	}
	if c.Registry == "" {
		c.Registry = path.Join(c.DeveloperRoot, "registry.hcl")
	}
	if len(c.Specs) == 0 {
		c.Specs = []string{path.Join(c.DeveloperRoot, "Specs", pbxspec.DefaultDomain)}
	}
	if c.DerivedData == "" {
		home := c.User.Home
		if home == "" {
			home = environValue(c.Environ, "HOME")
		}
		c.DerivedData = path.Join(home, "Library/Developer/Xcode/DerivedData")
	}
	if c.User.UserName == "" {
		c.User.UserName = environValue(c.Environ, "USER")
	}

	c.specDomains = nil
	for _, s := range c.Specs {
		domain, dir, ok := strings.Cut(s, "=")
		if !ok {
			domain, dir = pbxspec.DefaultDomain, s
		}
		if domain == "" || dir == "" {
			return nil, fmt.Errorf("specification directory %q: want domain=path", s)
		}
		c.specDomains = append(c.specDomains, specDomain{Domain: domain, Path: dir})
	}

	c.overrides = nil
	for _, o := range c.Overrides {
		setting, ok := pbxsetting.ParseSetting(o)
		if !ok || setting.Name == "" {
			return nil, fmt.Errorf("setting override %q: want NAME=VALUE", o)
		}
		c.overrides = append(c.overrides, setting)
	}
	if c.SDK != "" {
		c.overrides = append(c.overrides, pbxsetting.Create("SDKROOT", c.SDK))
	}
	if len(c.Archs) > 0 {
		c.overrides = append(c.overrides, pbxsetting.Create("ARCHS", strings.Join(c.Archs, " ")))
	}
	return &c, nil
}

// OverrideLevel is the command line settings level.
func (c *Config) OverrideLevel() pbxsetting.Level {
	return pbxsetting.NewLevel(c.overrides)
}

func environValue(environ []string, name string) string {
	for i := len(environ) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(environ[i], "="); ok && k == name {
			return v
		}
	}
	return ""
}
