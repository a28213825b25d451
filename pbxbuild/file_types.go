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

package pbxbuild

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// A FileTypeResolver infers file types from file names, using the file
// types visible from one domain chain.  It is safe for concurrent use.
type FileTypeResolver struct {
	types []*pbxspec.FileType
	byID  map[string]*pbxspec.FileType
	cache *lru.Cache[string, *pbxspec.FileType]
}

func NewFileTypeResolver(specs *pbxspec.Manager, domains []string) *FileTypeResolver {
	cache, err := lru.New[string, *pbxspec.FileType](4096)
	if err != nil {
		panic(err)
	}
	r := &FileTypeResolver{
		types: specs.FileTypes(domains...),
		byID:  make(map[string]*pbxspec.FileType),
		cache: cache,
	}
	for _, ft := range r.types {
		r.byID[ft.Identifier] = ft
	}
	return r
}

// Lookup returns the file type with identifier id, or nil.
func (r *FileTypeResolver) Lookup(id string) *pbxspec.FileType {
	return r.byID[id]
}

// Resolve infers the type of the file or folder at path.  Filename
// patterns are tried before extensions; among extensions the longest
// match wins, so "tar.gz" beats "gz".
func (r *FileTypeResolver) Resolve(path string, isFolder bool) *pbxspec.FileType {
	name := pathtools.BaseName(path)
	key := name
	if isFolder {
		key += "/"
	}
	if ft, ok := r.cache.Get(key); ok {
		return ft
	}
	ft := r.resolve(name, isFolder)
	r.cache.Add(key, ft)
	return ft
}

func (r *FileTypeResolver) resolve(name string, isFolder bool) *pbxspec.FileType {
	for _, ft := range r.types {
		if ft.IsFolder != isFolder && !ft.IsWrapperFolder {
			continue
		}
		for _, pattern := range ft.FilenamePatterns {
			if pathtools.Wildcard(pattern, name) {
				return ft
			}
		}
	}

	lower := strings.ToLower(name)
	var best *pbxspec.FileType
	bestLen := 0
	for _, ft := range r.types {
		if ft.IsFolder != isFolder && !ft.IsWrapperFolder {
			continue
		}
		for _, ext := range ft.Extensions {
			ext = strings.ToLower(ext)
			if len(ext) > bestLen && strings.HasSuffix(lower, "."+ext) {
				best, bestLen = ft, len(ext)
			}
		}
	}
	return best
}

// ResolveReference returns the type of a file reference whose expanded
// path is path.  An explicit or last known type takes precedence over the
// file name.
func (r *FileTypeResolver) ResolveReference(ref *pbxproj.FileReference, path string) *pbxspec.FileType {
	if id := ref.FileType(); id != "" {
		if ft := r.Lookup(id); ft != nil {
			return ft
		}
	}
	return r.Resolve(path, ref.IsGroup())
}
