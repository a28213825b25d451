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
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/xcbuild/xcbuild/pathtools"
)

// SearchPaths are the expanded header, framework and library search paths
// of a target.
type SearchPaths struct {
	HeaderSearchPaths     []string
	UserHeaderSearchPaths []string
	FrameworkSearchPaths  []string
	LibrarySearchPaths    []string
}

// NewSearchPaths expands the search path settings of env.  Relative paths
// are taken from workingDirectory.  A path ending in "/**" stands for the
// directory and every directory below it.
func NewSearchPaths(fs billy.Filesystem, env *Environment, workingDirectory string) SearchPaths {
	builtProducts := env.Value("BUILT_PRODUCTS_DIR")
	expand := func(setting string, first ...string) []string {
		paths := append([]string(nil), first...)
		for _, p := range env.List(setting) {
			paths = append(paths, expandSearchPath(fs, p, workingDirectory)...)
		}
		return pathtools.Uniq(paths)
	}
	return SearchPaths{
		HeaderSearchPaths:     expand("HEADER_SEARCH_PATHS", builtProducts+"/include"),
		UserHeaderSearchPaths: expand("USER_HEADER_SEARCH_PATHS"),
		FrameworkSearchPaths:  expand("FRAMEWORK_SEARCH_PATHS", builtProducts),
		LibrarySearchPaths:    expand("LIBRARY_SEARCH_PATHS", builtProducts),
	}
}

func expandSearchPath(fs billy.Filesystem, p, workingDirectory string) []string {
	root, recursive := strings.CutSuffix(p, "/**")
	root = pathtools.ResolveRelative(root, workingDirectory)
	if !recursive || fs == nil {
		return []string{root}
	}
	out := []string{root}
	_ = util.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && path != root {
			out = append(out, pathtools.Normalize(path))
		}
		return nil
	})
	return out
}

// CompilerArguments turns the search paths into compiler arguments.
func (s SearchPaths) CompilerArguments() []string {
	var args []string
	for _, p := range s.UserHeaderSearchPaths {
		args = append(args, "-iquote", p)
	}
	for _, p := range s.HeaderSearchPaths {
		args = append(args, "-I"+p)
	}
	for _, p := range s.FrameworkSearchPaths {
		args = append(args, "-F"+p)
	}
	return args
}

// LinkerArguments turns the library and framework search paths into linker
// arguments.
func (s SearchPaths) LinkerArguments() []string {
	var args []string
	for _, p := range s.LibrarySearchPaths {
		args = append(args, "-L"+p)
	}
	for _, p := range s.FrameworkSearchPaths {
		args = append(args, "-F"+p)
	}
	return args
}
