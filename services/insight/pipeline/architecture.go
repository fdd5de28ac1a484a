// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"sort"

	"github.com/namanag97/shannon-insight-sub002/services/insight/graph"
)

// =============================================================================
// Architectural layering
// =============================================================================

// ViolationKind classifies a layering violation.
type ViolationKind string

const (
	// ViolationBackward is an edge from a lower layer into a higher one:
	// a foundation module reaching up into the layers built on it.
	ViolationBackward ViolationKind = "backward"

	// ViolationSkip is an edge jumping down more than one layer at once.
	ViolationSkip ViolationKind = "skip"
)

// LayerViolation is one module-level edge that breaks the inferred
// layering.
type LayerViolation struct {
	Kind        ViolationKind `json:"kind"`
	Source      string        `json:"source"`
	Target      string        `json:"target"`
	SourceLayer int           `json:"source_layer"`
	TargetLayer int           `json:"target_layer"`
	EdgeCount   int           `json:"edge_count"`
}

// moduleEdge aggregates the file edges crossing one module boundary.
type moduleEdge struct {
	source, target string
	count          int
}

// architecture holds the contracted module graph, the inferred layers,
// and the violations against them.
type architecture struct {
	layers             map[string]int
	violations         []LayerViolation
	violationsBySource map[string]int
	violationRate      float64
}

// analyzeArchitecture contracts the file graph to modules, infers layers
// bottom-up from the modules nothing depends on, and flags edges that
// point the wrong way or skip layers.
func analyzeArchitecture(st *runState) *architecture {
	moduleOf := make(map[string]string, len(st.field.Files))
	modules := make(map[string]struct{})
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		moduleOf[path] = fs.Module
		modules[fs.Module] = struct{}{}
	}

	edges := contractEdges(st, moduleOf)
	layers := inferLayers(modules, edges)

	arch := &architecture{
		layers:             layers,
		violationsBySource: make(map[string]int),
	}

	var violating, crossing int
	for _, e := range edges {
		crossing += e.count
		srcLayer, dstLayer := layers[e.source], layers[e.target]

		var kind ViolationKind
		switch {
		case srcLayer < dstLayer:
			kind = ViolationBackward
		case srcLayer-dstLayer > 1:
			kind = ViolationSkip
		default:
			continue
		}

		violating += e.count
		arch.violationsBySource[e.source]++
		arch.violations = append(arch.violations, LayerViolation{
			Kind:        kind,
			Source:      e.source,
			Target:      e.target,
			SourceLayer: srcLayer,
			TargetLayer: dstLayer,
			EdgeCount:   e.count,
		})
	}

	if crossing > 0 {
		arch.violationRate = float64(violating) / float64(crossing)
	}
	return arch
}

// contractEdges collapses file edges into cross-module edges with counts,
// dropping intra-module edges. Output order is deterministic.
func contractEdges(st *runState, moduleOf map[string]string) []moduleEdge {
	counts := make(map[[2]string]int)
	for _, from := range st.g.Nodes() {
		for _, to := range st.g.Neighbors(from, graph.Outgoing) {
			src, dst := moduleOf[from], moduleOf[to]
			if src == dst {
				continue
			}
			counts[[2]string{src, dst}]++
		}
	}

	edges := make([]moduleEdge, 0, len(counts))
	for key, count := range counts {
		edges = append(edges, moduleEdge{source: key[0], target: key[1], count: count})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].source != edges[j].source {
			return edges[i].source < edges[j].source
		}
		return edges[i].target < edges[j].target
	})
	return edges
}

// inferLayers assigns layer 0 to modules with no outgoing cross-module
// edges, then walks dependents upward: a module sits one above the
// highest layer it depends on. Modules in dependency cycles that never
// settle stay at layer 0.
func inferLayers(modules map[string]struct{}, edges []moduleEdge) map[string]int {
	outDegree := make(map[string]int)
	dependents := make(map[string][]string)
	for _, e := range edges {
		outDegree[e.source]++
		dependents[e.target] = append(dependents[e.target], e.source)
	}

	layers := make(map[string]int, len(modules))
	var frontier []string
	for m := range modules {
		if outDegree[m] == 0 {
			layers[m] = 0
			frontier = append(frontier, m)
		}
	}
	sort.Strings(frontier)

	// Layers cannot exceed the module count; the cap keeps dependency
	// cycles from ratcheting forever.
	maxLayer := len(modules)
	for len(frontier) > 0 {
		var next []string
		for _, m := range frontier {
			for _, dep := range dependents[m] {
				proposed := layers[m] + 1
				if proposed > maxLayer {
					continue
				}
				if current, seen := layers[dep]; !seen || proposed > current {
					layers[dep] = proposed
					next = append(next, dep)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}

	for m := range modules {
		if _, seen := layers[m]; !seen {
			layers[m] = 0
		}
	}
	return layers
}
