// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the dependency graph model and the analytics that
// run over it: PageRank, betweenness centrality, strongly connected
// components, blast radius, entry-point depth, Louvain community detection,
// and Laplacian spectral analysis.
//
// The graph is directed and weighted. Parallel edges collapse by summing
// weight. Self-loops are recorded but excluded from centrality and
// community computations. Edges that reference an undeclared node are
// dropped and counted against the source node as phantom references; a
// dangling reference is a measurement, not an error.
package graph

import (
	"sort"
	"sync"
)

// Direction selects which adjacency a neighbor query walks.
type Direction int

const (
	// Outgoing walks edges this node points at (its dependencies).
	Outgoing Direction = iota

	// Incoming walks edges pointing at this node (its dependents).
	Incoming

	// Undirected walks the union of both adjacencies.
	Undirected
)

// Graph is a directed weighted dependency graph keyed by node ID.
//
// Thread Safety: NOT safe for concurrent mutation. Build the graph fully,
// then share it read-only across analytics goroutines.
type Graph struct {
	nodes     map[string]struct{}
	out       map[string]map[string]float64
	in        map[string]map[string]float64
	selfLoops map[string]float64
	phantoms  map[string]int
	edgeCount int

	// sortedNodes caches Nodes() output; invalidated by AddNode. The Once
	// guard makes the first materialization safe when analytics goroutines
	// share a fully built graph.
	sortOnce    sync.Once
	sortedNodes []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]struct{}),
		out:       make(map[string]map[string]float64),
		in:        make(map[string]map[string]float64),
		selfLoops: make(map[string]float64),
		phantoms:  make(map[string]int),
	}
}

// AddNode declares a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.sortOnce = sync.Once{}
	g.sortedNodes = nil
}

// HasNode reports whether id is declared.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge records a directed edge from -> to with the given weight.
//
// Description:
//
//	Parallel edges collapse by summing weight. A non-positive weight
//	defaults to 1.0. A self-loop is stored separately and never
//	participates in centrality. An edge whose source is undeclared is
//	ignored entirely; an edge whose target is undeclared is dropped and
//	counted as a phantom reference of the source.
//
// Outputs:
//
//   - bool: true if the edge entered the adjacency, false if it was
//     dropped (phantom target, unknown source) or stored as a self-loop.
func (g *Graph) AddEdge(from, to string, weight float64) bool {
	if weight <= 0 {
		weight = 1.0
	}
	if !g.HasNode(from) {
		return false
	}
	if !g.HasNode(to) {
		g.phantoms[from]++
		return false
	}
	if from == to {
		g.selfLoops[from] += weight
		return false
	}

	if g.out[from] == nil {
		g.out[from] = make(map[string]float64)
	}
	if g.in[to] == nil {
		g.in[to] = make(map[string]float64)
	}
	if _, exists := g.out[from][to]; !exists {
		g.edgeCount++
	}
	g.out[from][to] += weight
	g.in[to][from] += weight
	return true
}

// Nodes returns all node IDs in ascending order. The slice is shared;
// callers must not mutate it.
func (g *Graph) Nodes() []string {
	g.sortOnce.Do(func() {
		ids := make([]string, 0, len(g.nodes))
		for id := range g.nodes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		g.sortedNodes = ids
	})
	return g.sortedNodes
}

// NodeCount returns the number of declared nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct directed edges (self-loops
// excluded).
func (g *Graph) EdgeCount() int { return g.edgeCount }

// OutNeighbors returns the weighted out-adjacency of id. The map is shared;
// callers must not mutate it.
func (g *Graph) OutNeighbors(id string) map[string]float64 { return g.out[id] }

// InNeighbors returns the weighted in-adjacency of id. The map is shared;
// callers must not mutate it.
func (g *Graph) InNeighbors(id string) map[string]float64 { return g.in[id] }

// OutDegree returns the number of distinct out-edges of id.
func (g *Graph) OutDegree(id string) int { return len(g.out[id]) }

// InDegree returns the number of distinct in-edges of id.
func (g *Graph) InDegree(id string) int { return len(g.in[id]) }

// Neighbors returns the neighbor IDs of id in the given direction, sorted
// ascending.
func (g *Graph) Neighbors(id string, dir Direction) []string {
	seen := make(map[string]struct{})
	if dir == Outgoing || dir == Undirected {
		for n := range g.out[id] {
			seen[n] = struct{}{}
		}
	}
	if dir == Incoming || dir == Undirected {
		for n := range g.in[id] {
			seen[n] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for n := range seen {
		ids = append(ids, n)
	}
	sort.Strings(ids)
	return ids
}

// PhantomCount returns the number of dropped edges whose source was id.
func (g *Graph) PhantomCount(id string) int { return g.phantoms[id] }

// TotalPhantoms returns the total number of dropped edges across all
// sources.
func (g *Graph) TotalPhantoms() int {
	total := 0
	for _, c := range g.phantoms {
		total += c
	}
	return total
}

// undirectedWeight returns canonical undirected edge weights keyed by
// [2]string{min, max}, plus the total undirected weight m. Opposing
// directed edges between the same pair merge into one undirected edge.
func (g *Graph) undirectedWeight() (map[[2]string]float64, float64) {
	edges := make(map[[2]string]float64)
	var m float64
	for from, targets := range g.out {
		for to, w := range targets {
			key := [2]string{from, to}
			if to < from {
				key = [2]string{to, from}
			}
			edges[key] += w
		}
	}
	for _, w := range edges {
		m += w
	}
	return edges, m
}
