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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Betweenness Centrality (Brandes)
// =============================================================================

var betweennessTracer = otel.Tracer("insight.graph.betweenness")

// Betweenness computes betweenness centrality for every node.
//
// Description:
//
//	Brandes' algorithm over unweighted shortest paths on the directed
//	graph: one BFS plus a dependency back-propagation pass per source.
//	Scores are normalized by (N-1)(N-2), the number of ordered node pairs
//	a node could mediate; graphs with N <= 2 get all-zero scores.
//
// Inputs:
//
//   - ctx: Context for cancellation, checked between source nodes.
//
// Outputs:
//
//   - map[string]float64: normalized centrality per node. Partial scores
//     are returned as-is if the context is cancelled mid-run.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
//
// Complexity: O(V × E).
func (g *Graph) Betweenness(ctx context.Context) map[string]float64 {
	ctx, span := betweennessTracer.Start(ctx, "Graph.Betweenness",
		trace.WithAttributes(
			attribute.Int("node_count", g.NodeCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	nodes := g.Nodes()
	n := len(nodes)

	centrality := make(map[string]float64, n)
	for _, id := range nodes {
		centrality[id] = 0
	}
	if n <= 2 {
		return centrality
	}

	for processed, source := range nodes {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("sources_completed", processed),
			))
			break
		}

		// BFS phase: shortest-path counts and predecessor lists.
		var order []string
		predecessors := make(map[string][]string, n)
		pathCount := map[string]float64{source: 1}
		distance := map[string]int{source: 0}
		queue := []string{source}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			order = append(order, current)

			for _, target := range g.Neighbors(current, Outgoing) {
				if _, seen := distance[target]; !seen {
					distance[target] = distance[current] + 1
					queue = append(queue, target)
				}
				if distance[target] == distance[current]+1 {
					pathCount[target] += pathCount[current]
					predecessors[target] = append(predecessors[target], current)
				}
			}
		}

		// Accumulation phase: walk the BFS order backwards.
		dependency := make(map[string]float64, len(order))
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range predecessors[w] {
				dependency[v] += pathCount[v] / pathCount[w] * (1 + dependency[w])
			}
			if w != source {
				centrality[w] += dependency[w]
			}
		}
	}

	norm := float64(n-1) * float64(n-2)
	for id := range centrality {
		centrality[id] /= norm
	}

	slog.Debug("betweenness completed",
		slog.Int("node_count", n),
		slog.Int("edge_count", g.EdgeCount()),
	)

	return centrality
}
