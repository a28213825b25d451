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

	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// OptionsResult is what a tool's options contribute to an invocation.
type OptionsResult struct {
	Arguments   []string
	Environment map[string]string
	// LinkerArgs are arguments the options ask the linker to add, such as
	// the runtime library of a compiler feature.
	LinkerArgs []string
}

// NewOptionsResult turns the options of env's tool into arguments.  An
// option contributes only when it applies to fileType and to the current
// architecture and its Condition holds.  fileType may be nil.
func NewOptionsResult(env *Environment, fileType *pbxspec.FileType, logger *slog.Logger) OptionsResult {
	result := OptionsResult{Environment: make(map[string]string)}
	if env.Tool == nil {
		return result
	}
	if logger == nil {
		logger = slog.Default()
	}
	arch := env.Value("CURRENT_ARCH")

	for _, opt := range env.Tool.Options {
		if opt.Name == "" {
			continue
		}
		if len(opt.Architectures) > 0 && !contains(opt.Architectures, arch) {
			continue
		}
		if len(opt.FileTypes) > 0 && !fileTypeIsA(fileType, opt.FileTypes) {
			continue
		}
		if opt.Condition != "" {
			ok, err := pbxspec.EvaluateCondition(opt.Condition, env.Expand)
			if err != nil {
				logger.Warn("invalid option condition", "tool", env.Tool.Identifier,
					"setting", opt.Name, "condition", opt.Condition, "error", err)
				continue
			}
			if !ok {
				continue
			}
		}

		value := env.Value(opt.Name)
		if opt.SetValueInEnvironmentVariable != "" && value != "" {
			result.Environment[opt.SetValueInEnvironmentVariable] = value
		}
		result.Arguments = append(result.Arguments, optionArguments(env, opt, value)...)
		if opt.AdditionalLinkerArgs != nil {
			key := value
			if isBoolean(opt.Type) {
				key = pbxsetting.FormatBoolean(pbxsetting.ParseBoolean(value))
			}
			result.LinkerArgs = append(result.LinkerArgs, expandArgs(env, opt.AdditionalLinkerArgs.For(key), value)...)
		}
	}
	return result
}

func optionArguments(env *Environment, opt pbxspec.PropertyOption, value string) []string {
	switch {
	case isBoolean(opt.Type):
		on := pbxsetting.ParseBoolean(value)
		var args []string
		if on && opt.CommandLineFlag != "" {
			args = append(args, opt.CommandLineFlag)
		}
		if !on && opt.CommandLineFlagIfFalse != "" {
			args = append(args, opt.CommandLineFlagIfFalse)
		}
		if a := opt.CommandLineArgs; a != nil {
			switch {
			case a.ByValue != nil:
				args = append(args, expandArgs(env, a.For(pbxsetting.FormatBoolean(on)), value)...)
			case on:
				args = append(args, expandArgs(env, a.List, value)...)
			}
		}
		return args

	case opt.Type == "StringList" || opt.Type == "PathList":
		var args []string
		for _, item := range pbxsetting.ParseList(value) {
			args = append(args, scalarArguments(env, opt, item)...)
		}
		return args

	default:
		if value == "" && (opt.CommandLineArgs == nil || opt.CommandLineArgs.ByValue == nil) {
			return nil
		}
		return scalarArguments(env, opt, value)
	}
}

// scalarArguments synthesizes the arguments for one value of an option.
func scalarArguments(env *Environment, opt pbxspec.PropertyOption, value string) []string {
	if args, ok := opt.EnumArgs(value); ok {
		return expandArgs(env, args, value)
	}
	var args []string
	if opt.CommandLineFlag != "" && value != "" {
		args = append(args, opt.CommandLineFlag, value)
	}
	if opt.CommandLinePrefixFlag != "" && value != "" {
		args = append(args, opt.CommandLinePrefixFlag+value)
	}
	if opt.CommandLineArgs != nil {
		args = append(args, expandArgs(env, opt.CommandLineArgs.For(value), value)...)
	}
	return args
}

// expandArgs expands argument templates with $(value) bound to value.
// Arguments that expand to nothing are dropped.
func expandArgs(env *Environment, templates []string, value string) []string {
	if len(templates) == 0 {
		return nil
	}
	scoped := env.Environment.Child(pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("value", value),
	}))
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		if arg := scoped.ExpandString(t, env.Condition); arg != "" {
			out = append(out, arg)
		}
	}
	return out
}

func isBoolean(t string) bool {
	return t == "Boolean" || t == "bool"
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func fileTypeIsA(ft *pbxspec.FileType, ids []string) bool {
	if ft == nil {
		return false
	}
	for _, id := range ids {
		if ft.IsA(id) {
			return true
		}
	}
	return false
}
