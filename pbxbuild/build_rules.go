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
	"fmt"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// A BuildRule is a rule resolved against the specifications: the tool it
// runs, or the script and outputs of a custom rule.
type BuildRule struct {
	Name         string
	FileTypes    []string
	FilePatterns []string
	// Tool is nil for script rules.
	Tool    *pbxspec.Tool
	Script  string
	Outputs []string
	// OutputFlags holds extra compiler flags for each output of a script
	// rule.
	OutputFlags []string
}

// IsScript reports whether the rule runs a script instead of a tool.
func (r *BuildRule) IsScript() bool {
	return r.Tool == nil
}

// Matches reports whether the rule applies to the file at path of type ft.
func (r *BuildRule) Matches(ft *pbxspec.FileType, path string) bool {
	if len(r.FilePatterns) > 0 {
		name := pathtools.BaseName(path)
		for _, pattern := range r.FilePatterns {
			if pathtools.Wildcard(pattern, name) {
				return true
			}
		}
		return false
	}
	if ft == nil {
		return false
	}
	for _, id := range r.FileTypes {
		if ft.IsA(id) {
			return true
		}
	}
	return false
}

// TargetBuildRules is the ordered rule list of one target: the target's own
// rules, then the built-in rules, then rules synthesized from compilers.
type TargetBuildRules struct {
	Rules []*BuildRule
}

// NewTargetBuildRules resolves the rules of target.  Rules naming a missing
// tool are reported and left out.
func NewTargetBuildRules(specs *pbxspec.Manager, domains []string, target *pbxproj.Target, diags *Diagnostics) *TargetBuildRules {
	rules := &TargetBuildRules{}
	for _, br := range target.BuildRules {
		rule := &BuildRule{
			Name:        br.Name,
			Script:      br.Script,
			Outputs:     br.OutputFiles,
			OutputFlags: br.OutputFilesCompilerFlags,
		}
		if br.FilePatterns != "" {
			rule.FilePatterns = pbxsetting.ParseList(br.FilePatterns)
		}
		if br.FileType != "" && br.FileType != "pattern.proxy" {
			rule.FileTypes = []string{br.FileType}
		}
		if br.CompilerSpec != pbxspec.ScriptCompilerSpec {
			tool, err := specs.Tool(br.CompilerSpec, domains...)
			if err != nil {
				diags.Warn(target.Name, "", fmt.Sprintf("build rule %q: %v", br.Name, err))
				continue
			}
			rule.Tool = tool
		}
		rules.Rules = append(rules.Rules, rule)
	}

	for _, br := range specs.BuildRules(domains...) {
		rule := &BuildRule{
			Name:      br.Name,
			FileTypes: br.FileTypes,
			Script:    br.Script,
			Outputs:   br.Outputs,
		}
		if br.FilePatterns != "" {
			rule.FilePatterns = pbxsetting.ParseList(br.FilePatterns)
		}
		if br.CompilerSpec != pbxspec.ScriptCompilerSpec {
			tool, err := specs.Tool(br.CompilerSpec, domains...)
			if err != nil {
				diags.Warn(target.Name, "", fmt.Sprintf("build rule %q: %v", br.Name, err))
				continue
			}
			rule.Tool = tool
		}
		rules.Rules = append(rules.Rules, rule)
	}

	for _, c := range specs.Compilers(domains...) {
		if !c.SynthesizeBuildRule {
			continue
		}
		rules.Rules = append(rules.Rules, &BuildRule{
			Name:      c.Name,
			FileTypes: c.AcceptedFileTypes(),
			Tool:      c.Tool,
		})
	}
	return rules
}

// Match returns the first rule that applies to the file, or nil.
func (r *TargetBuildRules) Match(ft *pbxspec.FileType, path string) *BuildRule {
	for _, rule := range r.Rules {
		if rule.Matches(ft, path) {
			return rule
		}
	}
	return nil
}
