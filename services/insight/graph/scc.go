// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"sort"
)

// =============================================================================
// Strongly Connected Components (iterative Tarjan)
// =============================================================================

// SCCResult contains the strongly connected components of a graph.
type SCCResult struct {
	// Components lists each SCC with its member IDs sorted ascending.
	// Components are ordered by their smallest member.
	Components [][]string

	// CycleCount is the number of components with more than one member.
	CycleCount int
}

// sccFrame is an explicit stack frame for the iterative Tarjan walk.
type sccFrame struct {
	node      string
	neighbors []string
	next      int
}

// StronglyConnectedComponents computes all SCCs with an iterative Tarjan
// walk.
//
// Description:
//
//	The recursion of the textbook algorithm is replaced with an explicit
//	frame stack so deep dependency chains cannot overflow the goroutine
//	stack. Nodes are visited in sorted order, which makes the component
//	ordering deterministic for a given graph.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
//
// Complexity: O(V + E).
func (g *Graph) StronglyConnectedComponents() *SCCResult {
	index := make(map[string]int, g.NodeCount())
	lowlink := make(map[string]int, g.NodeCount())
	onStack := make(map[string]bool, g.NodeCount())
	var stack []string
	var components [][]string
	counter := 0

	for _, root := range g.Nodes() {
		if _, visited := index[root]; visited {
			continue
		}

		frames := []sccFrame{{node: root, neighbors: g.Neighbors(root, Outgoing)}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		for len(frames) > 0 {
			frame := &frames[len(frames)-1]

			if frame.next < len(frame.neighbors) {
				next := frame.neighbors[frame.next]
				frame.next++
				if _, visited := index[next]; !visited {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					frames = append(frames, sccFrame{node: next, neighbors: g.Neighbors(next, Outgoing)})
				} else if onStack[next] {
					if index[next] < lowlink[frame.node] {
						lowlink[frame.node] = index[next]
					}
				}
				continue
			}

			// Frame exhausted: pop and propagate lowlink to the parent.
			node := frame.node
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[node] < lowlink[parent] {
					lowlink[parent] = lowlink[node]
				}
			}

			if lowlink[node] == index[node] {
				var comp []string
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					comp = append(comp, top)
					if top == node {
						break
					}
				}
				sort.Strings(comp)
				components = append(components, comp)
			}
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})

	cycles := 0
	for _, comp := range components {
		if len(comp) > 1 {
			cycles++
		}
	}

	return &SCCResult{Components: components, CycleCount: cycles}
}
