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
	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// Frameworks links the objects compiled so far against the files of phase.
// phase may be nil for a target without a frameworks phase.
func (e *Environment) Frameworks(phase *pbxproj.BuildPhase) []tool.Invocation {
	if len(e.objects) == 0 {
		return nil
	}
	e.linked = true
	if e.Linker == nil {
		e.warn("no linker specification; product is not linked")
		return nil
	}

	products := make(map[string]bool)
	for _, dep := range e.Target.Dependencies {
		if dep == nil {
			continue
		}
		if p := dep.ProductPath(); p != "" {
			products[p] = true
		}
	}
	static := e.Target.Value("MACH_O_TYPE") == "staticlib"
	universal := len(e.Target.Architectures) > 1

	var invs []tool.Invocation
	for _, variant := range e.Target.Variants {
		binary := e.binaryPath(variant)
		var slices []string
		for _, arch := range e.Target.Architectures {
			key := archVariant{Variant: variant, Arch: arch}
			objects := e.objects[key]
			if len(objects) == 0 {
				continue
			}
			settings, condition := e.Target.Variant(arch, variant)

			var libraries, local []string
			if phase != nil {
				for _, f := range e.Files(phase, settings, condition, false) {
					libraries = append(libraries, f.Path)
					if products[f.Path] {
						local = append(local, f.Path)
					}
				}
			}

			perArch := settings.Value("PER_ARCH_OBJECT_FILE_DIR", condition)
			output := binary
			if universal {
				output = perArch + "/" + pathtools.BaseName(binary)
			}
			req := tool.LinkRequest{
				Objects:        objects,
				Libraries:      libraries,
				LocalLibraries: local,
				Output:         output,
				Arch:           arch,
				Static:         static,
				SearchPaths:    e.searchPaths(settings, condition),
				FileList:       perArch + "/" + e.productName() + ".LinkFileList",
			}
			if !static {
				req.DependencyInfo = perArch + "/" + e.productName() + "_dependency_info.dat"
			}
			invs = append(invs, e.Linker.Link(e.Tools, settings, condition, req))
			slices = append(slices, output)
		}
		if universal && len(slices) > 0 {
			invs = append(invs, e.Linker.Merge(e.Tools, e.Target.Environment, e.Target.Condition, slices, binary))
		}
	}
	return invs
}

// binaryPath is where the linked product of variant goes.  Variants other
// than "normal" get a suffix.
func (e *Environment) binaryPath(variant string) string {
	name := e.Target.Value("EXECUTABLE_PATH")
	if name == "" {
		name = e.Target.Value("FULL_PRODUCT_NAME")
	}
	path := e.Target.Value("TARGET_BUILD_DIR") + "/" + name
	if variant != "normal" {
		path += "_" + variant
	}
	return path
}
