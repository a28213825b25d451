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
	"log/slog"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// An Environment is the settings one tool invocation sees: the caller's
// environment with the tool's option defaults below it and the input and
// output file settings above it.
type Environment struct {
	Tool        *pbxspec.Tool
	Environment *pbxsetting.Environment
	Condition   pbxsetting.Condition
	Inputs      []string
	Outputs     []string
}

// NewEnvironment layers tool over env for the given input and output files.
// The first input defines InputPath and friends; the first output defines
// OutputPath.
func NewEnvironment(tool *pbxspec.Tool, env *pbxsetting.Environment, condition pbxsetting.Condition, inputs, outputs []string, logger *slog.Logger) *Environment {
	var front []pbxsetting.Setting
	if len(inputs) > 0 {
		in := inputs[0]
		front = append(front,
			pbxsetting.CreateLiteral("InputPath", in),
			pbxsetting.CreateLiteral("InputFileName", pathtools.BaseName(in)),
			pbxsetting.CreateLiteral("InputFileBase", pathtools.BaseNameWithoutExtension(in)),
			pbxsetting.CreateLiteral("InputFileDir", pathtools.Directory(in)),
		)
	}
	if len(outputs) > 0 {
		out := outputs[0]
		front = append(front,
			pbxsetting.CreateLiteral("OutputPath", out),
			pbxsetting.CreateLiteral("OutputFile", pathtools.BaseName(out)),
			pbxsetting.CreateLiteral("OutputDir", pathtools.Directory(out)),
		)
	}

	levels := []pbxsetting.Level{pbxsetting.NewLevel(front)}
	levels = append(levels, env.Levels()...)
	if tool != nil {
		levels = append(levels, tool.DefaultSettings())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Environment{
		Tool:        tool,
		Environment: pbxsetting.NewEnvironment(levels, nil).WithLogger(logger),
		Condition:   condition,
		Inputs:      inputs,
		Outputs:     outputs,
	}
}

// Value expands the setting called name.
func (e *Environment) Value(name string) string {
	return e.Environment.Value(name, e.Condition)
}

// Expand expands s as setting syntax.
func (e *Environment) Expand(s string) string {
	return e.Environment.ExpandString(s, e.Condition)
}

// List returns the setting called name split into a list.
func (e *Environment) List(name string) []string {
	return e.Environment.List(name, e.Condition)
}

// Bool reports whether the setting called name is true.
func (e *Environment) Bool(name string) bool {
	return e.Environment.Bool(name, e.Condition)
}

// ToolEnvironmentVariables expands the tool's declared environment
// variables.
func (e *Environment) ToolEnvironmentVariables() map[string]string {
	out := make(map[string]string)
	if e.Tool == nil {
		return out
	}
	for k, v := range e.Tool.EnvironmentVariables {
		out[k] = e.Expand(v)
	}
	return out
}

// LogMessage expands the tool's ExecDescription, falling back to fallback.
func (e *Environment) LogMessage(fallback string) string {
	if e.Tool != nil && e.Tool.ExecDescription != "" {
		if msg := e.Expand(e.Tool.ExecDescription); msg != "" {
			return msg
		}
	}
	return fallback
}
