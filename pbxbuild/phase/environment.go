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

// Package phase turns the build phases of a resolved target into tool
// invocations.
package phase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

var (
	ErrNoFileReference = errors.New("build file has no file reference")
	ErrEmptyPath       = errors.New("file path expands to nothing")
	ErrUnknownFileType = errors.New("unknown file type")
	ErrNoBuildRule     = errors.New("no build rule applies")
)

type archVariant struct {
	Variant string
	Arch    string
}

// An Environment is what the phase resolvers of one target share: the
// target's settings, the tool resolvers, and what earlier phases produced
// for later ones.
type Environment struct {
	Build   *pbxbuild.BuildEnvironment
	Context *pbxbuild.BuildContext
	Target  *pbxbuild.TargetEnvironment
	Tools   *tool.Context

	// Clang and Linker are nil when the specifications lack them.
	Clang  *tool.ClangResolver
	Linker *tool.LinkerResolver
	Copy   *tool.CopyResolver
	Script tool.ScriptResolver

	logger     *slog.Logger
	headerMaps *tool.HeaderMaps
	objects    map[archVariant][]string
	linked     bool
}

// NewEnvironment prepares the resolvers for te.
func NewEnvironment(build *pbxbuild.BuildEnvironment, ctx *pbxbuild.BuildContext, te *pbxbuild.TargetEnvironment) *Environment {
	logger := ctx.Logger.With("target", te.Target.Name)
	e := &Environment{
		Build:   build,
		Context: ctx,
		Target:  te,
		Tools: &tool.Context{
			FS:               build.FS,
			Executables:      &tool.ExecutableResolver{FS: build.FS, Paths: te.ExecutablePaths},
			WorkingDirectory: te.WorkingDirectory,
			Target:           te.Target.Name,
			Logger:           logger,
		},
		Copy:    tool.NewCopyResolver(build.Specs, te.Domains),
		logger:  logger,
		objects: make(map[archVariant][]string),
	}
	if c, err := build.Specs.Compiler(tool.ClangIdentifier, te.Domains...); err == nil {
		e.Clang = &tool.ClangResolver{Compiler: c}
	} else {
		logger.Debug("no C compiler", "error", err)
	}
	if l, err := tool.NewLinkerResolver(build.Specs, te.Domains); err == nil {
		e.Linker = l
	} else {
		logger.Debug("no linker", "error", err)
	}
	return e
}

func (e *Environment) fileError(path string, err error) {
	e.Context.Diagnostics.FileError(&pbxbuild.FileError{Target: e.Target.Target.Name, Path: path, Err: err})
}

func (e *Environment) warn(message string) {
	e.Context.Diagnostics.Warn(e.Target.Target.Name, "", message)
}

// expandPath expands a path setting template relative to the target's
// working directory.
func (e *Environment) expandPath(settings *pbxsetting.Environment, condition pbxsetting.Condition, template string) string {
	p := settings.ExpandString(template, condition)
	if p == "" {
		return ""
	}
	return pathtools.ResolveRelative(p, e.Target.WorkingDirectory)
}

// A File is one resolved entry of a build phase.
type File struct {
	BuildFile *pbxproj.BuildFile
	// Ref is the file itself; for a variant group, one of its children.
	Ref      *pbxproj.FileReference
	Path     string
	FileType *pbxspec.FileType
	// Rule is nil when no rule applies.
	Rule  *pbxbuild.BuildRule
	Flags []string
	// Localization is the language of a variant group member.
	Localization string
}

// Files resolves the files of phase.  Variant groups contribute each of
// their children.  Files that cannot be resolved, or that no rule applies to
// when needRule is set, are reported and left out.
func (e *Environment) Files(phase *pbxproj.BuildPhase, settings *pbxsetting.Environment, condition pbxsetting.Condition, needRule bool) []File {
	var files []File
	for _, bf := range phase.Files {
		if bf.FileRef == nil {
			e.fileError(bf.ID, ErrNoFileReference)
			continue
		}
		refs := []*pbxproj.FileReference{bf.FileRef}
		variant := bf.FileRef.Isa == pbxproj.IsaVariantGroup
		if variant {
			refs = bf.FileRef.Children
		}
		for _, ref := range refs {
			f, err := e.resolveFile(bf, ref, settings, condition, needRule)
			if err != nil {
				e.fileError(ref.DisplayName(), err)
				continue
			}
			if variant {
				f.Localization = localization(ref)
			}
			files = append(files, f)
		}
	}
	return files
}

func (e *Environment) resolveFile(bf *pbxproj.BuildFile, ref *pbxproj.FileReference, settings *pbxsetting.Environment, condition pbxsetting.Condition, needRule bool) (File, error) {
	path := e.expandPath(settings, condition, ref.ResolvedPath())
	if path == "" {
		return File{}, ErrEmptyPath
	}
	f := File{
		BuildFile: bf,
		Ref:       ref,
		Path:      path,
		FileType:  e.Target.FileTypes.ResolveReference(ref, path),
		Flags:     pbxsetting.ParseList(settings.ExpandString(bf.CompilerFlags(), condition)),
	}
	f.Rule = e.Target.BuildRules.Match(f.FileType, path)
	if needRule && f.Rule == nil {
		if f.FileType == nil {
			return File{}, fmt.Errorf("%s: %w", path, ErrUnknownFileType)
		}
		return File{}, fmt.Errorf("%s (%s): %w", path, f.FileType.Identifier, ErrNoBuildRule)
	}
	return f, nil
}

// localization names the language of a variant group member: the
// directory "<lang>.lproj" holding it, else its name.
func localization(ref *pbxproj.FileReference) string {
	dir := pathtools.BaseName(pathtools.Directory(ref.Path))
	if lang, ok := strings.CutSuffix(dir, ".lproj"); ok && lang != "" {
		return lang
	}
	return ref.Name
}

// searchPaths expands the search path settings for one variant and
// architecture.
func (e *Environment) searchPaths(settings *pbxsetting.Environment, condition pbxsetting.Condition) tool.SearchPaths {
	env := tool.NewEnvironment(nil, settings, condition, nil, nil, e.logger)
	return tool.NewSearchPaths(e.Build.FS, env, e.Target.WorkingDirectory)
}

// productName is the PRODUCT_NAME of the target.
func (e *Environment) productName() string {
	return e.Target.Value("PRODUCT_NAME")
}

// skip reports whether phase only runs for deployment builds and this is
// not one.
func (e *Environment) skip(phase *pbxproj.BuildPhase) bool {
	return phase.RunOnlyForDeploymentPostprocessing &&
		!e.Target.Environment.Bool("DEPLOYMENT_POSTPROCESSING", e.Target.Condition)
}
