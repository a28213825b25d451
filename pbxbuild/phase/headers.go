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

package phase

import (
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// headerFolders maps header visibility to the setting naming its folder.
var headerFolders = map[string]string{
	"Public":  "PUBLIC_HEADERS_FOLDER_PATH",
	"Private": "PRIVATE_HEADERS_FOLDER_PATH",
}

// Headers copies public and private headers into the product.  Project
// headers stay where they are.
func (e *Environment) Headers(phase *pbxproj.BuildPhase) []tool.Invocation {
	settings, condition := e.Target.Environment, e.Target.Condition
	var invs []tool.Invocation
	for _, f := range e.Files(phase, settings, condition, false) {
		folder := ""
		for _, attr := range f.BuildFile.Attributes() {
			if setting, ok := headerFolders[attr]; ok {
				folder = settings.Value(setting, condition)
			}
		}
		if folder == "" {
			continue
		}
		dir := settings.Value("TARGET_BUILD_DIR", condition) + "/" + folder
		invs = append(invs, e.Copy.Resolve(e.Tools, settings, condition, f.Path, dir, "CpHeader"))
	}
	return invs
}

// targetHeaders lists the headers of every headers phase of t, expanded in
// this target's settings.  Nothing is reported.
func (e *Environment) targetHeaders(t *pbxproj.Target) []string {
	var out []string
	for _, phase := range t.BuildPhases {
		if phase.Kind != pbxproj.HeadersPhase {
			continue
		}
		for _, bf := range phase.Files {
			if bf.FileRef == nil {
				continue
			}
			if p := e.expandPath(e.Target.Environment, e.Target.Condition, bf.FileRef.ResolvedPath()); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// projectHeaders lists every header file in the project navigator.
func (e *Environment) projectHeaders(project *pbxproj.Project) []string {
	if project.MainGroup == nil {
		return nil
	}
	var out []string
	project.MainGroup.Walk(func(ref *pbxproj.FileReference) {
		if ref.IsGroup() {
			return
		}
		p := e.expandPath(e.Target.Environment, e.Target.Condition, ref.ResolvedPath())
		if p == "" {
			return
		}
		if ft := e.Target.FileTypes.ResolveReference(ref, p); ft != nil && ft.IsA("sourcecode.c.h") {
			out = append(out, p)
		}
	})
	return out
}

// HeaderMaps writes the target's three header maps: its own headers, the
// headers of every target of the project, and every header in the project.
// Later compiles search them.
func (e *Environment) HeaderMaps() []tool.Invocation {
	maps := tool.NewHeaderMaps(e.Target.Environment, e.Target.Condition)
	e.headerMaps = &maps

	target := e.Target.Target
	own := tool.HeaderEntries(e.productName(), e.targetHeaders(target))

	var all []tool.HeaderEntry
	var project []string
	if p := target.Project; p != nil {
		for _, t := range p.Targets {
			name := t.ProductName
			if name == "" {
				name = t.Name
			}
			all = append(all, tool.HeaderEntries(name, e.targetHeaders(t))...)
		}
		project = tool.ProjectHeaders(e.projectHeaders(p))
	}

	return []tool.Invocation{
		tool.Headermap(e.Tools, maps.OwnTarget, own),
		tool.Headermap(e.Tools, maps.AllTarget, all),
		tool.Headermap(e.Tools, maps.Project, tool.HeaderEntries("", project)),
	}
}
