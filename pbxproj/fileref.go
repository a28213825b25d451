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

package pbxproj

import (
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
)

const (
	IsaFileReference  = "PBXFileReference"
	IsaGroup          = "PBXGroup"
	IsaVariantGroup   = "PBXVariantGroup"
	IsaVersionGroup   = "XCVersionGroup"
	IsaReferenceProxy = "PBXReferenceProxy"
)

// Source trees a path can be relative to.  Any other value names a build
// setting holding the base directory.
const (
	SourceTreeAbsolute = "<absolute>"
	SourceTreeGroup    = "<group>"
	SourceTreeRoot     = "SOURCE_ROOT"
)

// A FileReference is an entry of the project navigator: a file, a group of
// files, a localized variant group, a versioned group or a proxy for a
// product of another project.
type FileReference struct {
	ID                string
	Isa               string
	Name              string
	Path              string
	SourceTree        string
	ExplicitFileType  string
	LastKnownFileType string

	Children  []*FileReference
	Parent    *FileReference
	RemoteRef *ContainerItemProxy
}

func (f *FileReference) IsGroup() bool {
	switch f.Isa {
	case IsaGroup, IsaVariantGroup, IsaVersionGroup:
		return true
	}
	return false
}

// DisplayName is the name, or else the last element of the path.
func (f *FileReference) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return pathtools.BaseName(f.Path)
}

// FileType returns the explicit file type, falling back to the last known
// one.  Empty means the type must be inferred from the name.
func (f *FileReference) FileType() string {
	if f.ExplicitFileType != "" {
		return f.ExplicitFileType
	}
	return f.LastKnownFileType
}

// ResolvedPath returns the reference's location in setting syntax, for
// example "$(SRCROOT)/Sources/main.c" or "$(BUILT_PRODUCTS_DIR)/libA.a".
// Group-relative paths are resolved through the parent groups.
func (f *FileReference) ResolvedPath() string {
	var base string
	switch f.SourceTree {
	case SourceTreeAbsolute:
		return f.Path
	case SourceTreeGroup, "":
		if f.Parent != nil {
			base = f.Parent.ResolvedPath()
		} else {
			base = "$(SRCROOT)"
		}
	case SourceTreeRoot:
		base = "$(SRCROOT)"
	default:
		base = "$(" + f.SourceTree + ")"
	}
	return joinPath(base, f.Path)
}

func joinPath(base, p string) string {
	switch {
	case p == "":
		return base
	case base == "" || pathtools.IsAbsolute(p):
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + p
}

// Walk calls fn for f and every reference below it, depth first.
func (f *FileReference) Walk(fn func(*FileReference)) {
	fn(f)
	for _, c := range f.Children {
		c.Walk(fn)
	}
}
