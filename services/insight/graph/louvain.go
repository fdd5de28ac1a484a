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
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Louvain Community Detection
// =============================================================================

var louvainTracer = otel.Tracer("insight.graph.louvain")

// Louvain configuration constants.
const (
	// DefaultMaxLocalPasses caps the local-moving sweeps per level.
	DefaultMaxLocalPasses = 20

	// DefaultMaxLevels caps the coarsening depth.
	DefaultMaxLevels = 10
)

// LouvainOptions configures community detection.
type LouvainOptions struct {
	// MaxLocalPasses caps local-moving sweeps within one level.
	// Must be > 0. Default: 20
	MaxLocalPasses int

	// MaxLevels caps the number of coarsening levels.
	// Must be > 0. Default: 10
	MaxLevels int
}

// Validate checks options and applies defaults for invalid values.
func (o *LouvainOptions) Validate() {
	if o.MaxLocalPasses <= 0 {
		o.MaxLocalPasses = DefaultMaxLocalPasses
	}
	if o.MaxLevels <= 0 {
		o.MaxLevels = DefaultMaxLevels
	}
}

// DefaultLouvainOptions returns sensible defaults.
func DefaultLouvainOptions() *LouvainOptions {
	return &LouvainOptions{
		MaxLocalPasses: DefaultMaxLocalPasses,
		MaxLevels:      DefaultMaxLevels,
	}
}

// CommunityResult contains the detected community partition.
type CommunityResult struct {
	// Assignments maps node ID to a dense community index. Indices are
	// ordered by each community's smallest member, so results are
	// deterministic for a given graph.
	Assignments map[string]int

	// Count is the number of communities.
	Count int

	// Modularity is Newman's Q for the final partition, evaluated on the
	// original (uncoarsened) graph. Range [-0.5, 1].
	Modularity float64

	// Levels is the number of coarsening levels performed.
	Levels int
}

// levelGraph is the working graph for one Louvain level. Edges are
// canonical (min, max) pairs; a key with equal endpoints is a self-loop
// created by coarsening, whose weight counts twice toward degree.
type levelGraph struct {
	nodes  []string
	edges  map[[2]string]float64
	degree map[string]float64
	m      float64
}

// DetectCommunities partitions the graph with the Louvain method.
//
// Description:
//
//	Classic two-phase Louvain on the undirected weighted view of the
//	graph: repeated local moving (each node greedily joins the
//	neighboring community with the best modularity gain, ties broken by
//	lowest community index) followed by coarsening communities into
//	super-nodes. Levels repeat until a level produces no moves or the
//	level cap is reached.
//
//	Partitions are not unique for most graphs; only modularity and
//	coarse structure should be asserted by callers.
//
// Outputs:
//
//   - *CommunityResult: assignments, community count, modularity.
//     A graph with no edges yields one singleton community per node
//     and modularity 0.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
func (g *Graph) DetectCommunities(ctx context.Context, opts *LouvainOptions) *CommunityResult {
	ctx, span := louvainTracer.Start(ctx, "Graph.DetectCommunities",
		trace.WithAttributes(
			attribute.Int("node_count", g.NodeCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	if opts == nil {
		opts = DefaultLouvainOptions()
	} else {
		opts.Validate()
	}

	edges, m := g.undirectedWeight()
	nodes := g.Nodes()

	// No edges: every node is its own community.
	if m == 0 {
		assignments := make(map[string]int, len(nodes))
		for i, id := range nodes {
			assignments[id] = i
		}
		span.SetAttributes(attribute.Int("community_count", len(nodes)))
		return &CommunityResult{
			Assignments: assignments,
			Count:       len(nodes),
			Modularity:  0,
		}
	}

	level := newLevelGraph(nodes, edges)

	// membership maps every original node to its community label at the
	// current level (labels are current-level node IDs).
	membership := make(map[string]string, len(nodes))
	for _, id := range nodes {
		membership[id] = id
	}

	levels := 0
	for levels < opts.MaxLevels {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(attribute.Int("levels_completed", levels)))
			break
		}

		community, moved := level.localMoving(opts.MaxLocalPasses)
		if !moved {
			break
		}
		levels++

		// Fold this level's assignment into the original-node membership.
		for id, label := range membership {
			membership[id] = community[label]
		}

		coarsened := level.coarsen(community)
		if len(coarsened.nodes) == len(level.nodes) {
			break
		}
		level = coarsened
	}

	assignments, count := denseAssignments(nodes, membership)
	modularity := partitionModularity(edges, m, assignments)

	slog.Debug("Louvain completed",
		slog.Int("communities", count),
		slog.Float64("modularity", modularity),
		slog.Int("levels", levels),
	)
	span.SetAttributes(
		attribute.Int("community_count", count),
		attribute.Float64("modularity", modularity),
		attribute.Int("levels", levels),
	)

	return &CommunityResult{
		Assignments: assignments,
		Count:       count,
		Modularity:  modularity,
		Levels:      levels,
	}
}

func newLevelGraph(nodes []string, edges map[[2]string]float64) *levelGraph {
	lg := &levelGraph{
		nodes:  append([]string(nil), nodes...),
		edges:  edges,
		degree: make(map[string]float64, len(nodes)),
	}
	for _, id := range nodes {
		lg.degree[id] = 0
	}
	for key, w := range edges {
		if key[0] == key[1] {
			lg.degree[key[0]] += 2 * w
		} else {
			lg.degree[key[0]] += w
			lg.degree[key[1]] += w
		}
		lg.m += w
	}
	return lg
}

// neighborWeights returns the weight from id to each neighbor, self-loops
// excluded.
func (lg *levelGraph) neighborWeights(id string) map[string]float64 {
	weights := make(map[string]float64)
	for key, w := range lg.edges {
		switch {
		case key[0] == id && key[1] != id:
			weights[key[1]] += w
		case key[1] == id && key[0] != id:
			weights[key[0]] += w
		}
	}
	return weights
}

// localMoving runs greedy community moves until a full pass makes none, or
// maxPasses is reached. Returns the node -> community-label map and whether
// any node moved at all.
func (lg *levelGraph) localMoving(maxPasses int) (map[string]string, bool) {
	community := make(map[string]string, len(lg.nodes))
	sigma := make(map[string]float64, len(lg.nodes))
	for _, id := range lg.nodes {
		community[id] = id
		sigma[id] += lg.degree[id]
	}

	// Precompute adjacency once; edge scans per node are too slow inside
	// the pass loop.
	adjacency := make(map[string]map[string]float64, len(lg.nodes))
	for _, id := range lg.nodes {
		adjacency[id] = lg.neighborWeights(id)
	}

	twoM := 2 * lg.m
	anyMoved := false

	for pass := 0; pass < maxPasses; pass++ {
		movedThisPass := false

		for _, id := range lg.nodes {
			current := community[id]
			ki := lg.degree[id]

			// Weight from id into each adjacent community.
			kiIn := make(map[string]float64)
			for neighbor, w := range adjacency[id] {
				kiIn[community[neighbor]] += w
			}

			// Detach id before evaluating candidates.
			sigma[current] -= ki

			bestCommunity := current
			bestGain := kiIn[current]/twoM - sigma[current]*ki/(twoM*twoM)

			candidates := make([]string, 0, len(kiIn))
			for c := range kiIn {
				candidates = append(candidates, c)
			}
			sort.Strings(candidates)

			for _, c := range candidates {
				if c == current {
					continue
				}
				gain := kiIn[c]/twoM - sigma[c]*ki/(twoM*twoM)
				if gain > bestGain || (gain == bestGain && c < bestCommunity) {
					bestGain = gain
					bestCommunity = c
				}
			}

			sigma[bestCommunity] += ki
			if bestCommunity != current {
				community[id] = bestCommunity
				movedThisPass = true
				anyMoved = true
			}
		}

		if !movedThisPass {
			break
		}
	}

	return community, anyMoved
}

// coarsen contracts each community into a super-node. Intra-community
// weight becomes a self-loop so degrees stay correct at the next level.
func (lg *levelGraph) coarsen(community map[string]string) *levelGraph {
	labels := make(map[string]struct{})
	for _, c := range community {
		labels[c] = struct{}{}
	}

	sorted := make([]string, 0, len(labels))
	for c := range labels {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)

	superName := make(map[string]string, len(sorted))
	superNodes := make([]string, len(sorted))
	for i, c := range sorted {
		name := fmt.Sprintf("__super_%d", i)
		superName[c] = name
		superNodes[i] = name
	}

	superEdges := make(map[[2]string]float64)
	for key, w := range lg.edges {
		a := superName[community[key[0]]]
		b := superName[community[key[1]]]
		superKey := [2]string{a, b}
		if b < a {
			superKey = [2]string{b, a}
		}
		superEdges[superKey] += w
	}

	return newLevelGraph(superNodes, superEdges)
}

// denseAssignments renumbers community labels to 0..k-1 ordered by each
// community's smallest original member.
func denseAssignments(nodes []string, membership map[string]string) (map[string]int, int) {
	firstMember := make(map[string]string)
	for _, id := range nodes {
		label := membership[id]
		if member, ok := firstMember[label]; !ok || id < member {
			firstMember[label] = id
		}
	}

	labels := make([]string, 0, len(firstMember))
	for label := range firstMember {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return firstMember[labels[i]] < firstMember[labels[j]]
	})

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	assignments := make(map[string]int, len(nodes))
	for _, id := range nodes {
		assignments[id] = index[membership[id]]
	}
	return assignments, len(labels)
}

// partitionModularity evaluates Newman's Q for a partition against the
// original undirected edges.
func partitionModularity(edges map[[2]string]float64, m float64, assignments map[string]int) float64 {
	if m == 0 {
		return 0
	}

	internal := make(map[int]float64)
	degree := make(map[string]float64)
	for key, w := range edges {
		if key[0] == key[1] {
			degree[key[0]] += 2 * w
		} else {
			degree[key[0]] += w
			degree[key[1]] += w
		}
		if assignments[key[0]] == assignments[key[1]] {
			internal[assignments[key[0]]] += w
		}
	}

	sigma := make(map[int]float64)
	for id, k := range degree {
		sigma[assignments[id]] += k
	}

	var q float64
	for c, s := range sigma {
		q += internal[c]/m - (s/(2*m))*(s/(2*m))
	}
	return q
}
