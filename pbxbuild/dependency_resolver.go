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
	"fmt"

	"github.com/xcbuild/xcbuild/pbxproj"
)

// A DependencyResolver builds the graph of targets a build must produce.
type DependencyResolver struct {
	Context *BuildContext
}

// ResolveSchemeDependencies collects the targets the scheme builds for the
// context's action, their explicit dependencies and, unless the scheme
// disables it, implicit dependencies on products linked in frameworks
// phases.
func (r *DependencyResolver) ResolveSchemeDependencies() (*DirectedGraph[*pbxproj.Target], error) {
	c := r.Context
	if c.Scheme == nil {
		return nil, fmt.Errorf("no scheme selected")
	}
	var roots []*pbxproj.Target
	for _, entry := range c.Scheme.BuildAction.Entries {
		if !entry.BuildFor(c.SchemeAction()) {
			continue
		}
		t := c.Workspace.ResolveBuildable(entry.BuildableReference)
		if t == nil {
			c.Diagnostics.Warn(entry.BuildableReference.BlueprintName, "",
				fmt.Sprintf("scheme %s refers to a missing target", c.Scheme.Name))
			continue
		}
		roots = append(roots, t)
	}
	return r.resolve(roots, c.Scheme.BuildAction.ImplicitDependencies())
}

// ResolveLegacyDependencies builds the graph for a build of named targets
// without a scheme: every target of the workspace when targetName is empty.
// Only explicit dependencies are followed.
func (r *DependencyResolver) ResolveLegacyDependencies(targetName string) (*DirectedGraph[*pbxproj.Target], error) {
	var roots []*pbxproj.Target
	for _, t := range r.Context.Workspace.Targets() {
		if targetName == "" || t.Name == targetName {
			roots = append(roots, t)
		}
	}
	if targetName != "" && len(roots) == 0 {
		return nil, fmt.Errorf("target %q not found", targetName)
	}
	return r.resolve(roots, false)
}

// resolve collects roots and their dependencies.  Targets enter the graph in
// workspace declaration order, so ordering breaks ties by declaration.
func (r *DependencyResolver) resolve(roots []*pbxproj.Target, implicit bool) (*DirectedGraph[*pbxproj.Target], error) {
	c := r.Context

	var products map[string]*pbxproj.Target
	if implicit {
		products = productIndex(c.Workspace.Targets())
	}

	type edge struct{ from, to *pbxproj.Target }
	var edges []edge
	var reached []*pbxproj.Target
	visited := make(map[*pbxproj.Target]bool)
	var visit func(t *pbxproj.Target)
	visit = func(t *pbxproj.Target) {
		if visited[t] {
			return
		}
		visited[t] = true
		reached = append(reached, t)

		for _, dep := range t.Dependencies {
			target := c.Workspace.ResolveDependency(t, dep)
			if target == nil {
				c.Diagnostics.Warn(t.Name, "", fmt.Sprintf("unresolved dependency %q", dep.Name))
				continue
			}
			edges = append(edges, edge{target, t})
			visit(target)
		}
		if implicit {
			for _, target := range implicitDependencies(t, products) {
				c.Logger.Debug("implicit dependency", "target", t.Name, "dependency", target.Name)
				edges = append(edges, edge{target, t})
				visit(target)
			}
		}
	}
	for _, t := range roots {
		visit(t)
	}

	graph := NewDirectedGraph[*pbxproj.Target]()
	for _, t := range c.Workspace.Targets() {
		if visited[t] {
			graph.Insert(t)
		}
	}
	for _, t := range reached {
		graph.Insert(t)
	}
	for _, e := range edges {
		graph.AddEdge(e.from, e.to)
	}

	if cycle := graph.Cycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, t := range cycle {
			names[i] = t.Name
		}
		return nil, &CycleError{Members: names}
	}
	return graph, nil
}

// productIndex maps each product file name to the target building it.
func productIndex(targets []*pbxproj.Target) map[string]*pbxproj.Target {
	out := make(map[string]*pbxproj.Target)
	for _, t := range targets {
		if ref := t.ProductReference; ref != nil {
			if _, ok := out[ref.DisplayName()]; !ok {
				out[ref.DisplayName()] = t
			}
		}
	}
	return out
}

// implicitDependencies finds the targets producing files t links against.
func implicitDependencies(t *pbxproj.Target, products map[string]*pbxproj.Target) []*pbxproj.Target {
	var out []*pbxproj.Target
	for _, phase := range t.BuildPhases {
		if phase.Kind != pbxproj.FrameworksPhase {
			continue
		}
		for _, file := range phase.Files {
			if file.FileRef == nil {
				continue
			}
			if producer, ok := products[file.FileRef.DisplayName()]; ok && producer != t {
				out = append(out, producer)
			}
		}
	}
	return out
}
