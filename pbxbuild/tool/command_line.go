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
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
)

// DefaultCommandLine is used by tools that declare no CommandLine.
const DefaultCommandLine = "[exec-path] [options] [special-args]"

// CommandLineResult is the expanded command line of a tool.
type CommandLineResult struct {
	Executable string
	Arguments  []string
}

// CommandLineRequest fills the placeholders of a command line template.
type CommandLineRequest struct {
	// Executable overrides the tool's ExecPath when not empty.
	Executable  string
	Options     []string
	SpecialArgs []string
	// RemovedArgs are dropped from the finished command line.
	RemovedArgs []string
}

// NewCommandLineResult expands the CommandLine template of env's tool.
// Placeholders in square brackets are replaced by the executable, the
// option arguments, the special arguments, and the inputs and outputs of
// env; every other word is expanded as a setting value.
func NewCommandLineResult(env *Environment, exec *ExecutableResolver, req CommandLineRequest) CommandLineResult {
	template := DefaultCommandLine
	executable := req.Executable
	if env.Tool != nil {
		if env.Tool.CommandLine != "" {
			template = env.Tool.CommandLine
		}
		if executable == "" {
			executable = env.Expand(env.Tool.ExecPath)
		}
	}

	var words []string
	for _, word := range pbxsetting.ParseList(template) {
		switch word {
		case "[exec-path]":
			words = append(words, exec.Find(executable))
		case "[options]":
			words = append(words, req.Options...)
		case "[special-args]":
			words = append(words, req.SpecialArgs...)
		case "[input]":
			if len(env.Inputs) > 0 {
				words = append(words, env.Inputs[0])
			}
		case "[inputs]":
			words = append(words, env.Inputs...)
		case "[output]":
			if len(env.Outputs) > 0 {
				words = append(words, env.Outputs[0])
			}
		case "[outputs]":
			words = append(words, env.Outputs...)
		default:
			if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
				continue
			}
			if w := env.Expand(word); w != "" {
				words = append(words, w)
			}
		}
	}

	if len(req.RemovedArgs) > 0 {
		removed := make(map[string]bool, len(req.RemovedArgs))
		for _, a := range req.RemovedArgs {
			removed[a] = true
		}
		kept := words[:0]
		for i, w := range words {
			if i == 0 || !removed[w] {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	if len(words) == 0 {
		return CommandLineResult{Executable: exec.Find(executable)}
	}
	return CommandLineResult{Executable: words[0], Arguments: words[1:]}
}

// An ExecutableResolver finds tools in a list of directories.
type ExecutableResolver struct {
	FS    billy.Filesystem
	Paths []string
}

// Find returns the path of the executable called name.  Absolute paths and
// builtin tools are returned unchanged, as is a name found nowhere.
func (r *ExecutableResolver) Find(name string) string {
	if name == "" || pathtools.IsAbsolute(name) || strings.HasPrefix(name, "builtin-") || r == nil || r.FS == nil {
		return name
	}
	for _, dir := range r.Paths {
		candidate := pathtools.ResolveRelative(name, dir)
		if info, err := r.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return name
}
