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

package phase

import (
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// RezIdentifier is the Carbon resource compiler.
const RezIdentifier = "com.apple.compilers.rez"

// Resources copies resources into the product, or runs the tool a rule
// names for them.  Localized files go to their language's .lproj folder.
func (e *Environment) Resources(phase *pbxproj.BuildPhase) []tool.Invocation {
	settings, condition := e.Target.Environment, e.Target.Condition
	base := settings.Value("TARGET_BUILD_DIR", condition)
	if folder := settings.Value("UNLOCALIZED_RESOURCES_FOLDER_PATH", condition); folder != "" {
		base += "/" + folder
	}

	var invs []tool.Invocation
	for _, f := range e.Files(phase, settings, condition, false) {
		dir := base
		if f.Localization != "" {
			dir += "/" + f.Localization + ".lproj"
		}
		if f.Rule != nil && !f.Rule.IsScript() && f.Rule.Tool.Identifier != tool.CopyIdentifier && !e.isClang(f.Rule.Tool) {
			r, err := tool.NewResolver(e.Build.Specs, f.Rule.Tool.Identifier, e.Target.Domains)
			if err != nil {
				e.fileError(f.Path, err)
				continue
			}
			invs = append(invs, r.Resolve(e.Tools, settings, condition, []string{f.Path}, nil, f.FileType))
			continue
		}
		invs = append(invs, e.Copy.Resolve(e.Tools, settings, condition, f.Path, dir, "CpResource"))
	}
	return invs
}

// Rez compiles resource manager sources.
func (e *Environment) Rez(phase *pbxproj.BuildPhase) []tool.Invocation {
	if len(phase.Files) == 0 {
		return nil
	}
	r, err := tool.NewResolver(e.Build.Specs, RezIdentifier, e.Target.Domains)
	if err != nil {
		e.warn("Rez phase skipped: " + err.Error())
		return nil
	}
	settings, condition := e.Target.Environment, e.Target.Condition
	var invs []tool.Invocation
	for _, f := range e.Files(phase, settings, condition, false) {
		invs = append(invs, r.Resolve(e.Tools, settings, condition, []string{f.Path}, nil, f.FileType))
	}
	return invs
}
