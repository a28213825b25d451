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

package tool

import (
	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

const (
	InfoPlistIdentifier = "com.apple.tools.info-plist-utility"
	InfoPlistExecutable = "builtin-infoPlistUtility"
)

// An InfoPlistResolver processes a target's Info.plist into its product.
// Tool may be nil; the builtin utility is then run with no options.
type InfoPlistResolver struct {
	Tool *pbxspec.Tool
}

// Resolve returns the Info.plist invocation, or false when the target sets
// no INFOPLIST_FILE.
func (r *InfoPlistResolver) Resolve(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition) (Invocation, bool) {
	file := settings.Value("INFOPLIST_FILE", condition)
	if file == "" {
		return Invocation{}, false
	}
	input := pathtools.ResolveRelative(file, ctx.WorkingDirectory)
	output := settings.ExpandString("$(TARGET_BUILD_DIR)/$(INFOPLIST_PATH)", condition)

	env := NewEnvironment(r.Tool, settings, condition, []string{input}, []string{output}, ctx.Logger)
	var options OptionsResult
	if r.Tool != nil {
		options = NewOptionsResult(env, nil, ctx.logger())
	}

	special := []string{input}
	outputs := []string{output}
	if env.Bool("GENERATE_PKGINFO_FILE") {
		pkgInfo := env.Expand("$(TARGET_BUILD_DIR)/$(PKGINFO_PATH)")
		special = append(special, "-genpkginfo", pkgInfo)
		outputs = append(outputs, pkgInfo)
	}
	expand := env.Bool("INFOPLIST_EXPAND_BUILD_SETTINGS")
	if expand {
		special = append(special, "-expandbuildsettings")
	}
	if platform := env.Value("PLATFORM_NAME"); platform != "" {
		special = append(special, "-platform", platform)
	}
	special = append(special, "-o", output)

	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Executable:  InfoPlistExecutable,
		Options:     options.Arguments,
		SpecialArgs: special,
	})
	var environment map[string]string
	if expand {
		environment = settings.ComputeValues(condition)
	}
	return ctx.finish(Invocation{
		Executable:  cl.Executable,
		Arguments:   cl.Arguments,
		Environment: environment,
		Inputs:      []string{input},
		Outputs:     outputs,
		LogMessage:  env.LogMessage("ProcessInfoPlistFile " + output + " " + input),
	}), true
}
