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

// CopyIdentifier is the specification of the file copy tool.
const CopyIdentifier = "com.apple.compilers.pbxcp"

// A CopyResolver copies files into a product.  Without a specification it
// runs builtin-copy with no options.
type CopyResolver struct {
	Tool *pbxspec.Tool
}

func NewCopyResolver(specs *pbxspec.Manager, domains []string) *CopyResolver {
	t, _ := specs.Tool(CopyIdentifier, domains...)
	return &CopyResolver{Tool: t}
}

// Resolve copies input into outputDir.  logVerb names the step in the log,
// such as "CpHeader" or "CpResource".
func (r *CopyResolver) Resolve(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, input, outputDir, logVerb string) Invocation {
	output := outputDir + "/" + pathtools.BaseName(input)
	env := NewEnvironment(r.Tool, settings, condition, []string{input}, []string{output}, ctx.Logger)
	options := NewOptionsResult(env, nil, ctx.logger())

	special := []string{"-exclude", ".DS_Store", "-exclude", "CVS", "-exclude", ".svn", "-exclude", ".git"}
	if env.Bool("COPY_PHASE_STRIP") && env.Bool("DEPLOYMENT_POSTPROCESSING") {
		special = append(special, "-strip-debug-symbols")
	}
	special = append(special, input, outputDir)

	executable := ""
	if r.Tool == nil || r.Tool.ExecPath == "" {
		executable = "builtin-copy"
	}
	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Executable:  executable,
		Options:     options.Arguments,
		SpecialArgs: special,
	})
	return ctx.finish(Invocation{
		Executable: cl.Executable,
		Arguments:  cl.Arguments,
		Inputs:     []string{input},
		Outputs:    []string{output},
		LogMessage: logVerb + " " + output + " " + input,
	})
}
