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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Graph model tests
// =============================================================================

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	assert.True(t, g.AddEdge("a", "b", 1))
	assert.True(t, g.AddEdge("a", "b", 2), "parallel edge should collapse")
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 3.0, g.OutNeighbors("a")["b"])

	// Self-loop: stored but not part of the adjacency.
	assert.False(t, g.AddEdge("a", "a", 1))
	assert.Equal(t, 1, g.EdgeCount())

	// Phantom target: dropped, counted against the source.
	assert.False(t, g.AddEdge("a", "ghost", 1))
	assert.Equal(t, 1, g.PhantomCount("a"))
	assert.Equal(t, 1, g.TotalPhantoms())

	// Unknown source: dropped silently.
	assert.False(t, g.AddEdge("ghost", "b", 1))
	assert.Equal(t, 0, g.PhantomCount("ghost"))
}

func TestGraph_Neighbors(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("c", "a", 1)

	assert.Equal(t, []string{"b"}, g.Neighbors("a", Outgoing))
	assert.Equal(t, []string{"c"}, g.Neighbors("a", Incoming))
	assert.Equal(t, []string{"b", "c"}, g.Neighbors("a", Undirected))
}

// Analytics goroutines share a fully built graph and all call Nodes();
// the first sorted materialization must be safe under the race detector.
func TestGraph_NodesConcurrentFirstCall(t *testing.T) {
	g := New()
	for _, id := range []string{"d", "b", "a", "c"} {
		g.AddNode(id)
	}

	const readers = 8
	results := make([][]string, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Nodes()
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	}
}

func TestGraph_NodesCacheInvalidatedByAddNode(t *testing.T) {
	g := New()
	g.AddNode("b")
	require.Equal(t, []string{"b"}, g.Nodes())

	g.AddNode("a")
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

// =============================================================================
// SCC tests
// =============================================================================

func TestSCC_TriangleWithIsolate(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "a", 1)

	result := g.StronglyConnectedComponents()
	require.Len(t, result.Components, 2)
	assert.Equal(t, []string{"a", "b", "c"}, result.Components[0])
	assert.Equal(t, []string{"d"}, result.Components[1])
	assert.Equal(t, 1, result.CycleCount)
}

func TestSCC_Acyclic(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)

	result := g.StronglyConnectedComponents()
	assert.Len(t, result.Components, 3)
	assert.Equal(t, 0, result.CycleCount)
}

// =============================================================================
// Traversal tests
// =============================================================================

func TestBlastRadius(t *testing.T) {
	g := New()
	for _, id := range []string{"core", "mid", "app", "other"} {
		g.AddNode(id)
	}
	g.AddEdge("app", "mid", 1)
	g.AddEdge("mid", "core", 1)

	assert.Equal(t, []string{"app", "mid"}, g.BlastRadius("core"))
	assert.Equal(t, []string{"app"}, g.BlastRadius("mid"))
	assert.Empty(t, g.BlastRadius("app"))
	assert.Empty(t, g.BlastRadius("missing"))
}

func TestDepthFromEntryPoints(t *testing.T) {
	g := New()
	for _, id := range []string{"main", "svc", "util", "island"} {
		g.AddNode(id)
	}
	g.AddEdge("main", "svc", 1)
	g.AddEdge("svc", "util", 1)

	depths := g.DepthFromEntryPoints([]string{"main", "missing"})
	assert.Equal(t, 0, depths["main"])
	assert.Equal(t, 1, depths["svc"])
	assert.Equal(t, 2, depths["util"])
	assert.Equal(t, -1, depths["island"])
}

// =============================================================================
// PageRank tests
// =============================================================================

func TestPageRankOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts PageRankOptions
		want PageRankOptions
	}{
		{
			name: "negative damping resets",
			opts: PageRankOptions{DampingFactor: -1, MaxIterations: 10, Convergence: 1e-4},
			want: PageRankOptions{DampingFactor: DefaultDampingFactor, MaxIterations: 10, Convergence: 1e-4},
		},
		{
			// DampingFactor 0 is a legal value and survives Validate.
			name: "zero iterations and convergence get defaults",
			opts: PageRankOptions{},
			want: PageRankOptions{DampingFactor: 0, MaxIterations: DefaultMaxIterations, Convergence: DefaultConvergence},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Validate()
			assert.Equal(t, tt.want, tt.opts)
		})
	}
}

func TestPageRank_MassConservedWithDanglingNodes(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "sink"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "sink", 1)

	result := g.PageRank(context.Background(), nil)
	require.True(t, result.Converged)

	var sum float64
	for _, score := range result.Scores {
		sum += score
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestPageRank_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		g.AddEdge("a", "b", 1)
		g.AddEdge("b", "c", 2)
		g.AddEdge("c", "a", 1)
		g.AddEdge("d", "a", 1)
		return g
	}

	first := build().PageRank(context.Background(), nil)
	second := build().PageRank(context.Background(), nil)
	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestPageRank_EmptyGraph(t *testing.T) {
	result := New().PageRank(context.Background(), nil)
	assert.Empty(t, result.Scores)
	assert.True(t, result.Converged)
}

// =============================================================================
// Betweenness tests
// =============================================================================

func TestBetweenness_PathCenter(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)

	scores := g.Betweenness(context.Background())
	// b mediates the single a->c path; (n-1)(n-2) = 2.
	assert.InDelta(t, 0.5, scores["b"], 1e-9)
	assert.InDelta(t, 0.0, scores["a"], 1e-9)
	assert.InDelta(t, 0.0, scores["c"], 1e-9)
}

func TestBetweenness_TinyGraphAllZero(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", 1)

	for _, score := range g.Betweenness(context.Background()) {
		assert.Zero(t, score)
	}
}

// =============================================================================
// Louvain tests
// =============================================================================

func buildTwoCliques() *Graph {
	g := New()
	left := []string{"a1", "a2", "a3", "a4"}
	right := []string{"b1", "b2", "b3", "b4"}
	for _, id := range append(append([]string{}, left...), right...) {
		g.AddNode(id)
	}
	for i := range left {
		for j := i + 1; j < len(left); j++ {
			g.AddEdge(left[i], left[j], 1)
			g.AddEdge(right[i], right[j], 1)
		}
	}
	g.AddEdge("a1", "b1", 1)
	return g
}

func TestLouvain_TwoCliques(t *testing.T) {
	result := buildTwoCliques().DetectCommunities(context.Background(), nil)

	assert.Equal(t, 2, result.Count)
	assert.Greater(t, result.Modularity, 0.3)

	// All of each clique lands in one community.
	for _, id := range []string{"a2", "a3", "a4"} {
		assert.Equal(t, result.Assignments["a1"], result.Assignments[id])
	}
	for _, id := range []string{"b2", "b3", "b4"} {
		assert.Equal(t, result.Assignments["b1"], result.Assignments[id])
	}
	assert.NotEqual(t, result.Assignments["a1"], result.Assignments["b1"])
}

func TestLouvain_NoEdges(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	result := g.DetectCommunities(context.Background(), nil)
	assert.Equal(t, 2, result.Count)
	assert.Zero(t, result.Modularity)
	assert.NotEqual(t, result.Assignments["a"], result.Assignments["b"])
}

func TestLouvain_Deterministic(t *testing.T) {
	first := buildTwoCliques().DetectCommunities(context.Background(), nil)
	second := buildTwoCliques().DetectCommunities(context.Background(), nil)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Modularity, second.Modularity)
}

// =============================================================================
// Spectral tests
// =============================================================================

func TestSpectral_ConnectedPair(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", 1)

	result := g.SpectralAnalysis(context.Background())
	assert.InDelta(t, 2.0, result.FiedlerValue, 1e-9)
	assert.InDelta(t, 2.0, result.SpectralGap, 1e-9)
	assert.True(t, result.Connected)
	assert.False(t, result.Approximate)
}

func TestSpectral_DisconnectedIsExactlyZero(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id)
	}
	g.AddEdge("a", "b", 1)
	g.AddEdge("c", "d", 1)

	result := g.SpectralAnalysis(context.Background())
	assert.Equal(t, 0.0, result.FiedlerValue)
	assert.False(t, result.Connected)
}

func TestSpectral_DegenerateGraphs(t *testing.T) {
	assert.Zero(t, New().SpectralAnalysis(context.Background()).FiedlerValue)

	single := New()
	single.AddNode("a")
	result := single.SpectralAnalysis(context.Background())
	assert.Zero(t, result.FiedlerValue)
	assert.Zero(t, result.SpectralGap)
}
