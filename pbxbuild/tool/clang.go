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

	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// ClangIdentifier is the default C-family compiler.
const ClangIdentifier = "com.apple.compilers.llvm.clang.1_0"

// A ClangResolver compiles C-family sources with a clang-like compiler.
type ClangResolver struct {
	Compiler *pbxspec.Compiler
}

// A CompileRequest describes one source file to compile.
type CompileRequest struct {
	Input    string
	FileType *pbxspec.FileType
	// OutputDir receives the object file.
	OutputDir string
	// Flags are the build file's own COMPILER_FLAGS.
	Flags []string
	// HeaderMapArguments and SearchPaths locate headers.
	HeaderMapArguments []string
	SearchPaths        SearchPaths
	PrecompiledHeader  *PrecompiledHeaderInfo
	// PrecompiledHeaderOutput is where PrecompiledHeader is compiled to.
	PrecompiledHeaderOutput string
}

// IsClang reports whether a compiler is driven like clang.
func IsClang(c *pbxspec.Compiler) bool {
	return c.IsA(ClangIdentifier) || c.IsA("com.apple.compilers.gcc") ||
		strings.Contains(pathtools.BaseName(c.ExecPath), "clang")
}

// Dialect returns the -x argument for a file type, "c" when unknown.
func Dialect(ft *pbxspec.FileType) string {
	if ft != nil && ft.GccDialectName != "" {
		return ft.GccDialectName
	}
	return "c"
}

func isCPlusPlus(dialect string) bool {
	return strings.Contains(dialect, "++")
}

// languageFlags returns the OTHER_*FLAGS settings for a dialect.
func languageFlags(env *Environment, dialect string) []string {
	var flags []string
	if isCPlusPlus(dialect) {
		flags = env.List("OTHER_CPLUSPLUSFLAGS")
		if len(flags) == 0 {
			flags = env.List("OTHER_CFLAGS")
		}
	} else {
		flags = env.List("OTHER_CFLAGS")
	}
	return append(flags, env.List("WARNING_CFLAGS")...)
}

// Resolve returns the invocation compiling req.Input into
// OutputDir/<base>.o, and the object file's path.
func (r *ClangResolver) Resolve(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, req CompileRequest) (Invocation, string) {
	ext := r.Compiler.OutputFileExtension
	if ext == "" {
		ext = "o"
	}
	output := req.OutputDir + "/" + pathtools.BaseNameWithoutExtension(req.Input) + "." + ext
	env := NewEnvironment(r.Compiler.Tool, settings, condition, []string{req.Input}, []string{output}, ctx.Logger)
	options := NewOptionsResult(env, req.FileType, ctx.logger())
	dialect := Dialect(req.FileType)

	special := []string{"-x", dialect}
	special = append(special, req.HeaderMapArguments...)
	special = append(special, req.SearchPaths.CompilerArguments()...)

	var inv Invocation
	if req.PrecompiledHeader != nil {
		special = append(special, "-include", strings.TrimSuffix(req.PrecompiledHeaderOutput, ".pch"))
		inv.InputDependencies = append(inv.InputDependencies, req.PrecompiledHeaderOutput)
	} else if prefix := env.Value("GCC_PREFIX_HEADER"); prefix != "" {
		prefix = pathtools.ResolveRelative(prefix, ctx.WorkingDirectory)
		special = append(special, "-include", prefix)
		inv.InputDependencies = append(inv.InputDependencies, prefix)
	}
	special = append(special, languageFlags(env, dialect)...)
	special = append(special, req.Flags...)

	if r.Compiler.HasDependencyInfo {
		depPath := pathtools.ReplaceExtension(output, "d")
		if r.Compiler.DependencyInfoFormat == dependency.Makefile {
			special = append(special, "-MMD", "-MT", "dependencies", "-MF", depPath)
		}
		inv.DependencyInfo = append(inv.DependencyInfo, DependencyInfo{Format: r.Compiler.DependencyInfoFormat, Path: depPath})
	}

	if env.Tool.CommandLine == "" {
		source := r.Compiler.SourceFileOption
		if source == "" {
			source = "-c"
		}
		special = append(special, source, req.Input, "-o", output)
	}

	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Options:     options.Arguments,
		SpecialArgs: special,
	})
	inv.Executable = cl.Executable
	inv.Arguments = cl.Arguments
	inv.Environment = mergeEnvironment(env.ToolEnvironmentVariables(), options.Environment)
	inv.Inputs = []string{req.Input}
	inv.Outputs = []string{output}
	inv.LogMessage = env.LogMessage("CompileC " + output + " " + req.Input)
	return ctx.finish(inv), output
}

// ResolvePrecompiledHeader compiles a prefix header to output.
func (r *ClangResolver) ResolvePrecompiledHeader(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, info PrecompiledHeaderInfo, output string) Invocation {
	env := NewEnvironment(r.Compiler.Tool, settings, condition, []string{info.HeaderPath}, []string{output}, ctx.Logger)
	special := []string{"-x", info.Dialect + "-header"}
	special = append(special, info.Arguments...)
	special = append(special, "-c", info.HeaderPath, "-o", output)

	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Executable:  env.Expand(r.Compiler.ExecPath),
		SpecialArgs: special,
	})
	return ctx.finish(Invocation{
		Executable: cl.Executable,
		Arguments:  cl.Arguments,
		Inputs:     []string{info.HeaderPath},
		Outputs:    []string{output},
		LogMessage: "ProcessPCH " + output + " " + info.HeaderPath,
	})
}

// PrecompiledHeaderArguments are the arguments of a compile that affect a
// precompiled prefix header: everything except the per-file ones.
func (r *ClangResolver) PrecompiledHeaderArguments(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, ft *pbxspec.FileType, searchPaths SearchPaths) []string {
	env := NewEnvironment(r.Compiler.Tool, settings, condition, nil, nil, ctx.Logger)
	args := NewOptionsResult(env, ft, ctx.logger()).Arguments
	args = append(args, searchPaths.CompilerArguments()...)
	return append(args, languageFlags(env, Dialect(ft))...)
}

func mergeEnvironment(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
