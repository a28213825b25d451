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
	"fmt"
	"strconv"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
)

// DefaultShell runs scripts that name no shell.
const DefaultShell = "/bin/sh"

// ScriptResolver runs user scripts: shell script phases, custom build rules
// and the build tools of legacy targets.
type ScriptResolver struct{}

// scriptEnvironment exports every setting, as Xcode does for scripts.
func scriptEnvironment(settings *pbxsetting.Environment, condition pbxsetting.Condition) map[string]string {
	return settings.ComputeValues(condition)
}

// ShellScriptPhase writes the phase's script to the target's temporary
// directory and runs it with the phase's shell.
func (ScriptResolver) ShellScriptPhase(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, phase *pbxproj.BuildPhase) Invocation {
	expand := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			if e := settings.ExpandString(p, condition); e != "" {
				out = append(out, pathtools.ResolveRelative(e, ctx.WorkingDirectory))
			}
		}
		return out
	}
	inputs := expand(phase.InputPaths)
	outputs := expand(phase.OutputPaths)

	vars := []pbxsetting.Setting{
		pbxsetting.CreateLiteral("SCRIPT_INPUT_FILE_COUNT", strconv.Itoa(len(inputs))),
		pbxsetting.CreateLiteral("SCRIPT_OUTPUT_FILE_COUNT", strconv.Itoa(len(outputs))),
	}
	for i, in := range inputs {
		vars = append(vars, pbxsetting.CreateLiteral(fmt.Sprintf("SCRIPT_INPUT_FILE_%d", i), in))
	}
	for i, out := range outputs {
		vars = append(vars, pbxsetting.CreateLiteral(fmt.Sprintf("SCRIPT_OUTPUT_FILE_%d", i), out))
	}
	scoped := settings.Child(pbxsetting.NewLevel(vars))

	shell := phase.ShellPath
	if shell == "" {
		shell = DefaultShell
	}
	name := phase.Name
	if name == "" {
		name = "Run Script"
	}
	scriptPath := settings.ExpandString("$(TARGET_TEMP_DIR)", condition) + "/Script-" + phase.ID + ".sh"

	return ctx.finish(Invocation{
		Executable:           ctx.Executables.Find(shell),
		Arguments:            []string{"-c", scriptPath},
		Environment:          scriptEnvironment(scoped, condition),
		Inputs:               inputs,
		Outputs:              outputs,
		InputDependencies:    []string{scriptPath},
		AuxiliaryFiles:       []AuxiliaryFile{scriptFile(scriptPath, shell, phase.ShellScript)},
		LogMessage:           "PhaseScriptExecution " + escapeLog(name) + " " + scriptPath,
		ShowEnvironmentInLog: phase.ShowEnvVarsInLog,
	})
}

// Rule runs a custom build rule's script on one input file.
func (ScriptResolver) Rule(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, script, input string, outputTemplates []string) Invocation {
	scoped := settings.Child(InputFileLevel(input))
	var outputs []string
	for _, t := range outputTemplates {
		if out := scoped.ExpandString(t, condition); out != "" {
			outputs = append(outputs, pathtools.ResolveRelative(out, ctx.WorkingDirectory))
		}
	}
	return ctx.finish(Invocation{
		Executable:  ctx.Executables.Find(DefaultShell),
		Arguments:   []string{"-c", script},
		Environment: scriptEnvironment(scoped, condition),
		Inputs:      []string{input},
		Outputs:     outputs,
		LogMessage:  "RuleScriptExecution " + escapeLog(firstOutput(outputs)) + " " + input,
	})
}

// LegacyTarget runs the build tool of an external build system target.
func (ScriptResolver) LegacyTarget(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, target *pbxproj.Target) Invocation {
	arguments := target.BuildArgumentsString
	if arguments == "" {
		arguments = "$(ACTION)"
	}
	dir := ctx.WorkingDirectory
	if target.BuildWorkingDirectory != "" {
		dir = pathtools.ResolveRelative(settings.ExpandString(target.BuildWorkingDirectory, condition), ctx.WorkingDirectory)
	}
	var env map[string]string
	if target.PassBuildSettingsInEnvironment {
		env = scriptEnvironment(settings, condition)
	}
	return ctx.finish(Invocation{
		Executable:       ctx.Executables.Find(settings.ExpandString(target.BuildToolPath, condition)),
		Arguments:        pbxsetting.ParseList(settings.ExpandString(arguments, condition)),
		Environment:      env,
		WorkingDirectory: dir,
		LogMessage:       "ExternalBuildToolExecution " + escapeLog(target.Name),
	})
}

// InputFileLevel defines the INPUT_FILE_* settings of a rule's input.
func InputFileLevel(input string) pbxsetting.Level {
	base := pathtools.BaseNameWithoutExtension(input)
	name := pathtools.BaseName(input)
	suffix := ""
	if len(name) > len(base) {
		suffix = name[len(base):]
	}
	return pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("INPUT_FILE_PATH", input),
		pbxsetting.CreateLiteral("INPUT_FILE_DIR", pathtools.Directory(input)),
		pbxsetting.CreateLiteral("INPUT_FILE_NAME", name),
		pbxsetting.CreateLiteral("INPUT_FILE_BASE", base),
		pbxsetting.CreateLiteral("INPUT_FILE_SUFFIX", suffix),
	})
}

func scriptFile(path, shell, script string) AuxiliaryFile {
	return AuxiliaryFile{
		Path:       path,
		Contents:   []byte("#!" + shell + "\n" + script + "\n"),
		Executable: true,
	}
}

func firstOutput(outputs []string) string {
	if len(outputs) == 0 {
		return ""
	}
	return outputs[0]
}

func escapeLog(s string) string {
	return strconv.Quote(s)
}
