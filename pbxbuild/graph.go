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
	"github.com/RoaringBitmap/roaring"
)

// A DirectedGraph orders nodes by precedence edges.  Nodes are numbered in
// insertion order and edges are kept as bitmaps of those numbers, so every
// traversal is deterministic.
type DirectedGraph[T comparable] struct {
	nodes []T
	index map[T]uint32
	// preds[i] holds the nodes that must come before node i.
	preds []*roaring.Bitmap
}

func NewDirectedGraph[T comparable]() *DirectedGraph[T] {
	return &DirectedGraph[T]{index: make(map[T]uint32)}
}

func (g *DirectedGraph[T]) add(n T) uint32 {
	if i, ok := g.index[n]; ok {
		return i
	}
	i := uint32(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.index[n] = i
	g.preds = append(g.preds, roaring.New())
	return i
}

// Insert adds node, and an edge to it from each of dependencies.  Nodes
// inserted first win ties when ordering.
func (g *DirectedGraph[T]) Insert(node T, dependencies ...T) {
	i := g.add(node)
	for _, dep := range dependencies {
		g.preds[i].Add(g.add(dep))
	}
}

// AddEdge records that from must be ordered before to.
func (g *DirectedGraph[T]) AddEdge(from, to T) {
	g.Insert(to, from)
}

func (g *DirectedGraph[T]) Contains(node T) bool {
	_, ok := g.index[node]
	return ok
}

func (g *DirectedGraph[T]) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in insertion order.
func (g *DirectedGraph[T]) Nodes() []T {
	return append([]T(nil), g.nodes...)
}

// Dependencies returns the nodes with an edge to node, in insertion order.
func (g *DirectedGraph[T]) Dependencies(node T) []T {
	i, ok := g.index[node]
	if !ok {
		return nil
	}
	return g.lookup(g.preds[i])
}

// Closure returns node's dependencies and theirs, transitively, in insertion
// order.
func (g *DirectedGraph[T]) Closure(node T) []T {
	i, ok := g.index[node]
	if !ok {
		return nil
	}
	seen := roaring.New()
	work := []uint32{i}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		it := g.preds[cur].Iterator()
		for it.HasNext() {
			p := it.Next()
			if seen.CheckedAdd(p) {
				work = append(work, p)
			}
		}
	}
	seen.Remove(i)
	return g.lookup(seen)
}

func (g *DirectedGraph[T]) lookup(b *roaring.Bitmap) []T {
	out := make([]T, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, g.nodes[it.Next()])
	}
	return out
}

// Ordered sorts the nodes so that every node follows its dependencies.
// Among nodes that are free to go next, the earliest inserted goes first.
// On a cycle it returns false with the nodes it could order.
func (g *DirectedGraph[T]) Ordered() (bool, []T) {
	remaining := roaring.New()
	remaining.AddRange(0, uint64(len(g.nodes)))
	order := make([]T, 0, len(g.nodes))
	for !remaining.IsEmpty() {
		next, ok := g.nextReady(remaining)
		if !ok {
			return false, order
		}
		remaining.Remove(next)
		order = append(order, g.nodes[next])
	}
	return true, order
}

func (g *DirectedGraph[T]) nextReady(remaining *roaring.Bitmap) (uint32, bool) {
	it := remaining.Iterator()
	for it.HasNext() {
		i := it.Next()
		if !g.preds[i].Intersects(remaining) {
			return i, true
		}
	}
	return 0, false
}

// Levels groups the nodes into stages: every node's dependencies are in
// earlier stages.  Nodes within a stage keep insertion order.  It returns
// false on a cycle.
func (g *DirectedGraph[T]) Levels() (bool, [][]T) {
	placed := roaring.New()
	var levels [][]T
	for placed.GetCardinality() < uint64(len(g.nodes)) {
		var stage []uint32
		for i := range g.nodes {
			n := uint32(i)
			if placed.Contains(n) {
				continue
			}
			if roaring.AndNot(g.preds[n], placed).IsEmpty() {
				stage = append(stage, n)
			}
		}
		if len(stage) == 0 {
			return false, levels
		}
		nodes := make([]T, len(stage))
		for j, n := range stage {
			nodes[j] = g.nodes[n]
		}
		for _, n := range stage {
			placed.Add(n)
		}
		levels = append(levels, nodes)
	}
	return true, levels
}

// Cycle returns the members of one dependency cycle, each depending on the
// one before it, or nil when the graph is acyclic.
func (g *DirectedGraph[T]) Cycle() []T {
	visited := roaring.New()
	checking := make(map[uint32]bool)
	var stack []uint32

	var check func(n uint32) []uint32
	check = func(n uint32) []uint32 {
		visited.Add(n)
		checking[n] = true
		stack = append(stack, n)
		defer func() {
			delete(checking, n)
			stack = stack[:len(stack)-1]
		}()

		it := g.preds[n].Iterator()
		for it.HasNext() {
			dep := it.Next()
			if checking[dep] {
				for i, s := range stack {
					if s == dep {
						return append([]uint32(nil), stack[i:]...)
					}
				}
			}
			if !visited.Contains(dep) {
				if cycle := check(dep); cycle != nil {
					return cycle
				}
			}
		}
		return nil
	}

	for i := range g.nodes {
		if visited.Contains(uint32(i)) {
			continue
		}
		if cycle := check(uint32(i)); cycle != nil {
			// The stack runs from dependents to dependencies.
			out := make([]T, len(cycle))
			for j, n := range cycle {
				out[len(cycle)-1-j] = g.nodes[n]
			}
			return out
		}
	}
	return nil
}
