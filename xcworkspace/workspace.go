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

// Package xcworkspace reads .xcworkspace bundles: the list of projects a
// workspace groups together.
package xcworkspace

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/xcbuild/xcbuild/pathtools"
)

type Workspace struct {
	// Path is the .xcworkspace bundle.
	Path string
	Name string
	// Projects lists the referenced .xcodeproj bundles as absolute paths,
	// in declaration order.
	Projects []string
}

// BasePath is the directory holding the workspace bundle.
func (w *Workspace) BasePath() string {
	return pathtools.Directory(w.Path)
}

type fileRef struct {
	Location string `xml:"location,attr"`
}

type group struct {
	Location string    `xml:"location,attr"`
	FileRefs []fileRef `xml:"FileRef"`
	Groups   []group   `xml:"Group"`
}

type contents struct {
	XMLName  xml.Name  `xml:"Workspace"`
	FileRefs []fileRef `xml:"FileRef"`
	Groups   []group   `xml:"Group"`
}

// Open reads <path>/contents.xcworkspacedata.
func Open(fs billy.Filesystem, path string) (*Workspace, error) {
	data, err := util.ReadFile(fs, path+"/contents.xcworkspacedata")
	if err != nil {
		return nil, err
	}
	var c contents
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	w := &Workspace{
		Path: path,
		Name: pathtools.BaseNameWithoutExtension(path),
	}
	base := w.BasePath()
	w.collect(base, base, c.FileRefs, c.Groups)
	return w, nil
}

// collect resolves references.  "group:" locations are relative to the
// enclosing group, "container:" ones to the workspace directory.
func (w *Workspace) collect(base, groupDir string, refs []fileRef, groups []group) {
	for _, ref := range refs {
		p := resolveLocation(ref.Location, base, groupDir)
		if strings.HasSuffix(p, ".xcodeproj") {
			w.Projects = append(w.Projects, p)
		}
	}
	for _, g := range groups {
		w.collect(base, resolveLocation(g.Location, base, groupDir), g.FileRefs, g.Groups)
	}
}

func resolveLocation(location, base, groupDir string) string {
	kind, p, ok := strings.Cut(location, ":")
	if !ok {
		return location
	}
	switch kind {
	case "absolute":
		return p
	case "container":
		return join(base, p)
	case "group":
		return join(groupDir, p)
	case "self":
		return base
	}
	return join(base, p)
}

func join(dir, p string) string {
	if p == "" {
		return dir
	}
	if pathtools.IsAbsolute(p) || dir == "" {
		return pathtools.Normalize(p)
	}
	return pathtools.Normalize(dir + "/" + p)
}
