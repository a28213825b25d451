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

// A Resolver runs any tool through its CommandLine template.  It serves
// rule-selected tools that have no dedicated resolver, such as lex, yacc or
// Rez.
type Resolver struct {
	Tool *pbxspec.Tool
	// Compiler is set when Tool is a compiler; its output directory and
	// extension then name the output.
	Compiler *pbxspec.Compiler
}

// NewResolver looks up the tool identifier.  Compilers get their compiler
// properties too.
func NewResolver(specs *pbxspec.Manager, identifier string, domains []string) (*Resolver, error) {
	t, err := specs.Tool(identifier, domains...)
	if err != nil {
		return nil, err
	}
	r := &Resolver{Tool: t}
	if t.Kind == pbxspec.KindCompiler {
		if c, err := specs.Compiler(identifier, domains...); err == nil {
			r.Compiler = c
		}
	}
	return r, nil
}

// Outputs names the files the tool makes from input.  Declared Outputs
// templates win; a compiler otherwise writes OutputDir/<base>.<ext>.
func (r *Resolver) Outputs(settings *pbxsetting.Environment, condition pbxsetting.Condition, input, workingDirectory string) []string {
	scoped := settings.Child(InputFileLevel(input), pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("InputPath", input),
		pbxsetting.CreateLiteral("InputFileName", pathtools.BaseName(input)),
		pbxsetting.CreateLiteral("InputFileBase", pathtools.BaseNameWithoutExtension(input)),
	}))
	var outputs []string
	for _, t := range r.Tool.Outputs {
		if out := scoped.ExpandString(t, condition); out != "" {
			outputs = append(outputs, pathtools.ResolveRelative(out, workingDirectory))
		}
	}
	if len(outputs) == 0 && r.Compiler != nil && r.Compiler.OutputDir != "" {
		dir := scoped.ExpandString(r.Compiler.OutputDir, condition)
		name := pathtools.BaseNameWithoutExtension(input)
		if ext := r.Compiler.OutputFileExtension; ext != "" {
			name += "." + ext
		}
		outputs = append(outputs, pathtools.ResolveRelative(dir, workingDirectory)+"/"+name)
	}
	return outputs
}

// Resolve runs the tool on inputs.  When outputs is nil they are derived
// from the first input.
func (r *Resolver) Resolve(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, inputs, outputs []string, fileType *pbxspec.FileType) Invocation {
	if outputs == nil && len(inputs) > 0 {
		outputs = r.Outputs(settings, condition, inputs[0], ctx.WorkingDirectory)
	}
	env := NewEnvironment(r.Tool, settings, condition, inputs, outputs, ctx.Logger)
	options := NewOptionsResult(env, fileType, ctx.logger())
	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{Options: options.Arguments})

	name := r.Tool.RuleName
	if name == "" {
		name = r.Tool.Identifier
	}
	var first string
	if len(inputs) > 0 {
		first = inputs[0]
	}
	return ctx.finish(Invocation{
		Executable:  cl.Executable,
		Arguments:   cl.Arguments,
		Environment: mergeEnvironment(env.ToolEnvironmentVariables(), options.Environment),
		Inputs:      inputs,
		Outputs:     outputs,
		LogMessage:  env.LogMessage(name + " " + first),
	})
}
