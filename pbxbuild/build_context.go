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

	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/xcscheme"
)

// A BuildContext is one requested build: what to build and how.
type BuildContext struct {
	Workspace *WorkspaceContext
	// Action is the scheme action the build serves: "build", "test",
	// "archive" and so on.
	Action string
	// Scheme is nil for a build of named targets.
	Scheme *xcscheme.Scheme
	// Configuration overrides each target's default configuration when
	// not empty.
	Configuration string
	// Overrides are NAME=VALUE settings given on the command line.
	Overrides pbxsetting.Level
	// DerivedDataRoot holds the DerivedDataHash directory of the
	// workspace.
	DerivedDataRoot string

	Diagnostics *Diagnostics
	Logger      *slog.Logger
}

// NewBuildContext returns a context for action with empty overrides.
func NewBuildContext(workspace *WorkspaceContext, action string, logger *slog.Logger) *BuildContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildContext{
		Workspace:   workspace,
		Action:      action,
		Diagnostics: &Diagnostics{Logger: logger},
		Logger:      logger,
	}
}

// SchemeAction maps a build action to the scheme attribute selecting the
// entries it builds.
func (c *BuildContext) SchemeAction() string {
	switch c.Action {
	case "test", "archive", "analyze", "profile":
		return c.Action
	default:
		return "run"
	}
}

// ConfigurationFor returns the configuration target builds with: the
// requested one, else the scheme's, else the target's default.
func (c *BuildContext) ConfigurationFor(target *pbxproj.Target) string {
	if c.Configuration != "" {
		return c.Configuration
	}
	if c.Scheme != nil {
		var action xcscheme.Action
		switch c.SchemeAction() {
		case "test":
			action = c.Scheme.TestAction
		case "archive":
			action = c.Scheme.ArchiveAction.Action
		case "analyze":
			action = c.Scheme.AnalyzeAction
		case "profile":
			action = c.Scheme.ProfileAction
		default:
			action = c.Scheme.LaunchAction
		}
		if action.BuildConfiguration != "" {
			return action.BuildConfiguration
		}
	}
	if bc := target.BuildConfigurationList.Default(); bc != nil {
		return bc.Name
	}
	if target.Project != nil {
		if bc := target.Project.BuildConfigurationList.Default(); bc != nil {
			return bc.Name
		}
	}
	return ""
}

// WorkspaceLevel defines the settings shared by every target of the
// workspace: where build products go and the action being performed.
func (c *BuildContext) WorkspaceLevel() pbxsetting.Level {
	settings := []pbxsetting.Setting{
		pbxsetting.CreateLiteral("ACTION", c.Action),
		pbxsetting.CreateLiteral("DERIVED_DATA_DIR", c.DerivedDataRoot+"/"+c.Workspace.DerivedDataHash.String()),
		pbxsetting.Create("SYMROOT", "$(DERIVED_DATA_DIR)/Build/Products"),
		pbxsetting.Create("OBJROOT", "$(DERIVED_DATA_DIR)/Build/Intermediates"),
		pbxsetting.Create("SHARED_PRECOMPS_DIR", "$(OBJROOT)/PrecompiledHeaders"),
	}
	if w := c.Workspace.Workspace; w != nil {
		settings = append(settings,
			pbxsetting.CreateLiteral("WORKSPACE_NAME", w.Name),
			pbxsetting.CreateLiteral("WORKSPACE_DIR", w.BasePath()))
	}
	if c.Scheme != nil {
		settings = append(settings, pbxsetting.CreateLiteral("SCHEME_NAME", c.Scheme.Name))
	}
	return pbxsetting.NewLevel(settings)
}
