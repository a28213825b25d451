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
	"sort"

	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// FrameworkProductType is the product type whose bundles get versioned
// symlinks.
const FrameworkProductType = "com.apple.product-type.framework"

// phaseOrder is the order of phases between two shell script phases.
var phaseOrder = map[pbxproj.BuildPhaseKind]int{
	pbxproj.HeadersPhase:     0,
	pbxproj.SourcesPhase:     1,
	pbxproj.FrameworksPhase:  2,
	pbxproj.ResourcesPhase:   3,
	pbxproj.CopyFilesPhase:   4,
	pbxproj.RezPhase:         5,
	pbxproj.AppleScriptPhase: 6,
}

// SortPhases orders phases for building.  Shell script phases stay where
// they are; the phases between them are sorted by kind, keeping the
// project's order within a kind.
func SortPhases(phases []*pbxproj.BuildPhase) []*pbxproj.BuildPhase {
	out := append([]*pbxproj.BuildPhase(nil), phases...)
	start := 0
	for i := 0; i <= len(out); i++ {
		if i < len(out) && out[i].Kind != pbxproj.ShellScriptPhase {
			continue
		}
		segment := out[start:i]
		sort.SliceStable(segment, func(a, b int) bool {
			return phaseOrder[segment[a].Kind] < phaseOrder[segment[b].Kind]
		})
		start = i + 1
	}
	return out
}

// Phase resolves one build phase.
func (e *Environment) Phase(phase *pbxproj.BuildPhase) []tool.Invocation {
	if e.skip(phase) {
		e.logger.Debug("skipping deployment phase", "phase", phase.ID)
		return nil
	}
	switch phase.Kind {
	case pbxproj.HeadersPhase:
		return e.Headers(phase)
	case pbxproj.SourcesPhase:
		return e.Sources(phase)
	case pbxproj.FrameworksPhase:
		return e.Frameworks(phase)
	case pbxproj.ResourcesPhase:
		return e.Resources(phase)
	case pbxproj.CopyFilesPhase:
		return e.CopyFiles(phase)
	case pbxproj.ShellScriptPhase:
		return []tool.Invocation{e.Script.ShellScriptPhase(e.Tools, e.Target.Environment, e.Target.Condition, phase)}
	case pbxproj.RezPhase:
		return e.Rez(phase)
	default:
		e.logger.Debug("unsupported build phase", "phase", phase.ID, "kind", phase.Kind)
		return nil
	}
}

// PhaseInvocations resolves everything building the target takes, in
// order: the product's directories and generated files, the phases, then
// marking the product as up to date.
func PhaseInvocations(e *Environment) []tool.Invocation {
	target := e.Target.Target
	if target.Kind == pbxproj.LegacyTarget {
		return []tool.Invocation{e.Script.LegacyTarget(e.Tools, e.Target.Environment, e.Target.Condition, target)}
	}

	invs := e.setup()
	for _, phase := range SortPhases(target.BuildPhases) {
		invs = append(invs, e.Phase(phase)...)
	}
	if !e.linked {
		invs = append(invs, e.Frameworks(nil)...)
	}
	if wrapper := e.wrapperPath(); wrapper != "" {
		var deps []string
		for _, inv := range invs {
			deps = append(deps, inv.Outputs...)
		}
		invs = append(invs, tool.Touch(e.Tools, wrapper, deps))
	}
	return invs
}

// wrapperPath is the bundle a wrapper product builds, or "".
func (e *Environment) wrapperPath() string {
	pt := e.Target.ProductType
	if pt == nil || !pt.IsWrapper {
		return ""
	}
	name := e.Target.Value("WRAPPER_NAME")
	if name == "" {
		return ""
	}
	return e.Target.Value("TARGET_BUILD_DIR") + "/" + name
}

func (e *Environment) hasPhase(kind pbxproj.BuildPhaseKind) bool {
	for _, phase := range e.Target.Target.BuildPhases {
		if phase.Kind == kind {
			return true
		}
	}
	return false
}

// setup creates the product bundle, header maps, Info.plist and framework
// symlinks.
func (e *Environment) setup() []tool.Invocation {
	te := e.Target
	var invs []tool.Invocation
	wrapper := e.wrapperPath()
	if wrapper != "" {
		invs = append(invs, tool.MakeDirectory(e.Tools, wrapper))
	}

	if e.Clang != nil && e.Clang.Compiler.SupportsHeadermaps && e.hasPhase(pbxproj.SourcesPhase) &&
		te.Environment.Bool("USE_HEADERMAP", te.Condition) {
		invs = append(invs, e.HeaderMaps()...)
	}

	if te.Target.Kind == pbxproj.NativeTarget {
		spec, _ := e.Build.Specs.Tool(tool.InfoPlistIdentifier, te.Domains...)
		if inv, ok := (&tool.InfoPlistResolver{Tool: spec}).Resolve(e.Tools, te.Environment, te.Condition); ok {
			invs = append(invs, inv)
		}
	}

	if wrapper != "" && te.ProductType.IsA(FrameworkProductType) && !te.Environment.Bool("SHALLOW_BUNDLE", te.Condition) {
		version := te.Value("FRAMEWORK_VERSION")
		if version == "" {
			version = "A"
		}
		invs = append(invs,
			tool.Symlink(e.Tools, version, wrapper+"/Versions/Current"),
			tool.Symlink(e.Tools, "Versions/Current/"+te.Value("EXECUTABLE_NAME"), wrapper+"/"+te.Value("EXECUTABLE_NAME")),
			tool.Symlink(e.Tools, "Versions/Current/Headers", wrapper+"/Headers"),
			tool.Symlink(e.Tools, "Versions/Current/Resources", wrapper+"/Resources"),
		)
	}
	return invs
}
