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
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// PageRank Algorithm
// =============================================================================

var pageRankTracer = otel.Tracer("insight.graph.pagerank")

// PageRank configuration constants.
const (
	// DefaultDampingFactor is the probability of following a link (vs random jump).
	// Standard value from the original PageRank paper.
	DefaultDampingFactor = 0.85

	// DefaultMaxIterations is the maximum iterations before stopping.
	DefaultMaxIterations = 100

	// DefaultConvergence is the threshold for convergence detection.
	// Power iteration stops when max score change < this value.
	DefaultConvergence = 1e-6
)

// PageRankOptions configures the PageRank algorithm.
type PageRankOptions struct {
	// DampingFactor is the probability of following a link (vs random jump).
	// Must be in [0, 1]. Default: 0.85
	DampingFactor float64

	// MaxIterations is the maximum iterations before stopping.
	// Must be > 0. Default: 100
	MaxIterations int

	// Convergence is the threshold for convergence detection.
	// Must be > 0. Default: 1e-6
	Convergence float64
}

// Validate checks options and applies defaults for invalid values.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor < 0 || o.DampingFactor > 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
}

// DefaultPageRankOptions returns sensible defaults.
func DefaultPageRankOptions() *PageRankOptions {
	return &PageRankOptions{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		Convergence:   DefaultConvergence,
	}
}

// PageRankResult contains the output of PageRank computation.
type PageRankResult struct {
	// Scores maps nodeID to PageRank score.
	// Scores sum to approximately 1.0.
	Scores map[string]float64

	// Iterations is the actual number of iterations performed.
	Iterations int

	// Converged indicates whether the algorithm converged before MaxIterations.
	Converged bool

	// MaxDiff is the final maximum score difference (useful for debugging).
	MaxDiff float64
}

// PageRank computes PageRank scores for all nodes in the graph.
//
// Description:
//
//	Uses power iteration to compute the PageRank score of each node,
//	which represents its importance based on the importance of nodes
//	linking to it (transitive importance).
//
//	Dangling nodes (no outgoing edges) redistribute their score evenly
//	across all nodes each iteration, so total mass stays at 1.0.
//	Edge weight biases the share a source passes to each target.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *PageRankResult: Scores for all nodes, iteration count, convergence
//     status. Empty result for an empty graph. Converged is false when the
//     iteration cap was hit or the context was cancelled mid-run.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
//
// Complexity: O(k × E) where k = iterations to converge (~20 typical).
func (g *Graph) PageRank(ctx context.Context, opts *PageRankOptions) *PageRankResult {
	ctx, span := pageRankTracer.Start(ctx, "Graph.PageRank",
		trace.WithAttributes(
			attribute.Int("node_count", g.NodeCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	N := float64(g.NodeCount())
	if N == 0 {
		span.AddEvent("empty_graph")
		return &PageRankResult{
			Scores:    make(map[string]float64),
			Converged: true,
		}
	}

	if opts == nil {
		opts = DefaultPageRankOptions()
	} else {
		opts.Validate()
	}

	span.SetAttributes(
		attribute.Float64("damping_factor", opts.DampingFactor),
		attribute.Int("max_iterations", opts.MaxIterations),
		attribute.Float64("convergence_threshold", opts.Convergence),
	)

	nodes := g.Nodes()
	d := opts.DampingFactor

	// Pre-allocate two maps and swap instead of reallocating each iteration.
	scores := make(map[string]float64, int(N))
	newScores := make(map[string]float64, int(N))

	initial := 1.0 / N
	for _, id := range nodes {
		scores[id] = initial
	}

	// Dangling nodes and per-source outgoing weight totals.
	danglingNodes := make([]string, 0)
	outWeight := make(map[string]float64, int(N))
	for _, id := range nodes {
		var total float64
		for _, w := range g.out[id] {
			total += w
		}
		outWeight[id] = total
		if total == 0 {
			danglingNodes = append(danglingNodes, id)
		}
	}

	span.SetAttributes(attribute.Int("dangling_node_count", len(danglingNodes)))

	var iterations int
	var converged bool
	var maxDiff float64

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("iterations_completed", iter),
			))
			return &PageRankResult{
				Scores:     scores,
				Iterations: iter,
				Converged:  false,
				MaxDiff:    maxDiff,
			}
		}

		maxDiff = 0.0

		danglingMass := 0.0
		for _, id := range danglingNodes {
			danglingMass += scores[id]
		}
		danglingContribution := d * danglingMass / N

		for _, id := range nodes {
			newScore := (1-d)/N + danglingContribution

			for source, w := range g.in[id] {
				if total := outWeight[source]; total > 0 {
					newScore += d * scores[source] * w / total
				}
			}

			newScores[id] = newScore

			diff := math.Abs(newScore - scores[id])
			if diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, newScores = newScores, scores
		iterations = iter + 1

		if maxDiff < opts.Convergence {
			converged = true
			break
		}
	}

	slog.Debug("PageRank completed",
		slog.Int("iterations", iterations),
		slog.Bool("converged", converged),
		slog.Float64("max_diff", maxDiff),
		slog.Int("node_count", int(N)),
	)

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
		attribute.Float64("max_diff", maxDiff),
	)

	return &PageRankResult{
		Scores:     scores,
		Iterations: iterations,
		Converged:  converged,
		MaxDiff:    maxDiff,
	}
}
