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
// Reachability: blast radius and entry-point depth
// =============================================================================

// BlastRadius returns the transitive dependents of id: every node that can
// reach id by following import edges. The node itself is excluded.
//
// Description:
//
//	Breadth-first search over the reverse adjacency. The result is the set
//	of files whose behavior could change if id changes.
//
// Outputs:
//
//   - []string: dependents sorted ascending. Empty (non-nil) slice when id
//     has no dependents or is undeclared.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
func (g *Graph) BlastRadius(id string) []string {
	if !g.HasNode(id) {
		return []string{}
	}

	visited := map[string]struct{}{id: {}}
	queue := []string{id}
	var radius []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for dependent := range g.in[current] {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			radius = append(radius, dependent)
			queue = append(queue, dependent)
		}
	}

	sort.Strings(radius)
	if radius == nil {
		radius = []string{}
	}
	return radius
}

// DepthFromEntryPoints computes, for every node, the shortest hop distance
// from any entry point following import edges.
//
// Description:
//
//	Multi-source BFS. Entry points themselves are at depth 0. Nodes not
//	reachable from any entry point get depth -1. Entry IDs that are not
//	declared in the graph are ignored.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
func (g *Graph) DepthFromEntryPoints(entries []string) map[string]int {
	depths := make(map[string]int, g.NodeCount())
	for _, id := range g.Nodes() {
		depths[id] = -1
	}

	queue := make([]string, 0, len(entries))
	sorted := append([]string(nil), entries...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if g.HasNode(id) && depths[id] == -1 {
			depths[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for target := range g.out[current] {
			if depths[target] == -1 {
				depths[target] = depths[current] + 1
				queue = append(queue, target)
			}
		}
	}

	return depths
}
