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
	"strings"

	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// Linker specifications.
const (
	LdIdentifier      = "com.apple.pbx.linkers.ld"
	LibtoolIdentifier = "com.apple.pbx.linkers.libtool"
	LipoIdentifier    = "com.apple.xcode.linkers.lipo"
)

// A LinkerResolver links object files into products: ld for executables and
// dynamic libraries, libtool for static libraries and lipo to merge
// architectures.
type LinkerResolver struct {
	Ld      *pbxspec.Linker
	Libtool *pbxspec.Linker
	Lipo    *pbxspec.Tool
}

// NewLinkerResolver looks the linkers up.  ld and libtool are required;
// lipo only when linking more than one architecture.
func NewLinkerResolver(specs *pbxspec.Manager, domains []string) (*LinkerResolver, error) {
	ld, err := specs.Linker(LdIdentifier, domains...)
	if err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}
	libtool, err := specs.Linker(LibtoolIdentifier, domains...)
	if err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}
	lipo, _ := specs.Tool(LipoIdentifier, domains...)
	return &LinkerResolver{Ld: ld, Libtool: libtool, Lipo: lipo}, nil
}

// A LinkRequest describes linking one architecture of a product.
type LinkRequest struct {
	Objects []string
	// Libraries are the files linked in the frameworks phase.
	Libraries []string
	// LocalLibraries are the Libraries built by the workspace; they become
	// inputs of the link.
	LocalLibraries []string
	Output         string
	Arch           string
	Static         bool
	SearchPaths    SearchPaths
	// FileList is where the object file list is written.
	FileList string
	// DependencyInfo is where ld records its inputs, if not empty.
	DependencyInfo string
	// ExtraArgs are arguments compiler options asked the linker to add.
	ExtraArgs []string
}

// Link returns the invocation linking req.
func (r *LinkerResolver) Link(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, req LinkRequest) Invocation {
	linker := r.Ld
	if req.Static {
		linker = r.Libtool
	}
	env := NewEnvironment(linker.Tool, settings, condition, req.Objects, []string{req.Output}, ctx.Logger)
	options := NewOptionsResult(env, nil, ctx.logger())

	var special []string
	var inv Invocation
	if req.Static {
		special = append(special, "-static", "-arch_only", req.Arch)
	} else {
		special = append(special, "-arch", req.Arch)
	}
	special = append(special, req.SearchPaths.LinkerArguments()...)
	if linker.SupportsInputFileList && req.FileList != "" {
		special = append(special, "-filelist", req.FileList)
		inv.AuxiliaryFiles = append(inv.AuxiliaryFiles, AuxiliaryFile{
			Path:     req.FileList,
			Contents: []byte(strings.Join(req.Objects, "\n") + "\n"),
		})
	} else {
		special = append(special, req.Objects...)
	}
	special = append(special, LibraryArguments(req.Libraries)...)
	special = append(special, req.ExtraArgs...)
	if req.Static {
		special = append(special, env.List("OTHER_LIBTOOLFLAGS")...)
	} else {
		special = append(special, env.List("OTHER_LDFLAGS")...)
		if req.DependencyInfo != "" {
			special = append(special, "-dependency_info", req.DependencyInfo)
			inv.DependencyInfo = append(inv.DependencyInfo, DependencyInfo{Format: dependency.Binary, Path: req.DependencyInfo})
		}
	}
	special = append(special, "-o", req.Output)

	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Options:     options.Arguments,
		SpecialArgs: special,
	})
	inv.Executable = cl.Executable
	inv.Arguments = cl.Arguments
	inv.Environment = mergeEnvironment(env.ToolEnvironmentVariables(), options.Environment)
	inv.Inputs = append(append([]string(nil), req.Objects...), req.LocalLibraries...)
	inv.Outputs = []string{req.Output}
	if req.Static {
		inv.LogMessage = "Libtool " + req.Output + " " + req.Arch
	} else {
		inv.LogMessage = "Ld " + req.Output + " " + req.Arch
	}
	return ctx.finish(inv)
}

// Merge returns the invocation combining per-architecture binaries into
// output with lipo.
func (r *LinkerResolver) Merge(ctx *Context, settings *pbxsetting.Environment, condition pbxsetting.Condition, inputs []string, output string) Invocation {
	var tool *pbxspec.Tool
	executable := "lipo"
	if r.Lipo != nil {
		tool = r.Lipo
		executable = ""
	}
	env := NewEnvironment(tool, settings, condition, inputs, []string{output}, ctx.Logger)
	special := append([]string{"-create"}, inputs...)
	special = append(special, "-output", output)
	cl := NewCommandLineResult(env, ctx.Executables, CommandLineRequest{
		Executable:  executable,
		SpecialArgs: special,
	})
	return ctx.finish(Invocation{
		Executable: cl.Executable,
		Arguments:  cl.Arguments,
		Inputs:     inputs,
		Outputs:    []string{output},
		LogMessage: "CreateUniversalBinary " + output,
	})
}

// LibraryArguments turns linked files into linker arguments: frameworks
// become -framework, libraries named lib*.a, lib*.dylib or lib*.tbd become
// -l, anything else is passed by path.
func LibraryArguments(libraries []string) []string {
	var args []string
	for _, lib := range libraries {
		name := pathtools.BaseName(lib)
		ext := pathtools.Extension(name)
		base := pathtools.BaseNameWithoutExtension(name)
		switch {
		case ext == "framework":
			args = append(args, "-framework", base)
		case strings.HasPrefix(name, "lib") && (ext == "a" || ext == "dylib" || ext == "tbd") && len(base) > 3:
			args = append(args, "-l"+base[3:])
		default:
			args = append(args, lib)
		}
	}
	return args
}
