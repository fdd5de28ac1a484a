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
	"gonum.org/v1/gonum/mat"
)

// =============================================================================
// Laplacian Spectral Analysis
// =============================================================================

var spectralTracer = otel.Tracer("insight.graph.spectral")

// ZeroEigenvalueTolerance snaps eigenvalues this close to zero to exactly
// zero, absorbing floating-point noise from the eigensolver.
const ZeroEigenvalueTolerance = 1e-9

// SpectralResult contains the Laplacian spectrum summary of a graph.
type SpectralResult struct {
	// FiedlerValue is the second-smallest Laplacian eigenvalue (algebraic
	// connectivity). Exactly 0 for a disconnected graph.
	FiedlerValue float64

	// SpectralGap is the difference between the second-smallest and the
	// smallest eigenvalue. The smallest is always 0 for a valid Laplacian,
	// so the gap equals the Fiedler value unless the solve degraded.
	SpectralGap float64

	// Connected reports whether the undirected view is connected
	// (FiedlerValue > 0).
	Connected bool

	// Approximate is set when the eigensolver failed and zeros were
	// substituted.
	Approximate bool
}

// SpectralAnalysis computes the Fiedler value and spectral gap of the
// combinatorial Laplacian L = D - A on the undirected weighted view.
//
// Description:
//
//	Builds a dense symmetric Laplacian and takes its full eigenvalue
//	decomposition. Eigenvalues within ZeroEigenvalueTolerance of zero are
//	treated as exactly zero, which is what makes the disconnected case
//	report a Fiedler value of 0 rather than numerical dust.
//
//	Graphs with fewer than two nodes have no meaningful spectrum and get
//	zeros. An eigensolver failure also yields zeros, flagged Approximate,
//	never an error.
//
// Thread Safety: Safe for concurrent use on an immutable graph.
//
// Complexity: O(V^3) for the dense eigendecomposition.
func (g *Graph) SpectralAnalysis(ctx context.Context) *SpectralResult {
	_, span := spectralTracer.Start(ctx, "Graph.SpectralAnalysis",
		trace.WithAttributes(
			attribute.Int("node_count", g.NodeCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	nodes := g.Nodes()
	n := len(nodes)
	if n < 2 {
		span.AddEvent("degenerate_graph")
		return &SpectralResult{Connected: n == 1}
	}

	index := make(map[string]int, n)
	for i, id := range nodes {
		index[id] = i
	}

	edges, _ := g.undirectedWeight()
	laplacian := mat.NewSymDense(n, nil)
	for key, w := range edges {
		i, j := index[key[0]], index[key[1]]
		if i == j {
			continue
		}
		laplacian.SetSym(i, j, -w)
		laplacian.SetSym(i, i, laplacian.At(i, i)+w)
		laplacian.SetSym(j, j, laplacian.At(j, j)+w)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(laplacian, false); !ok {
		span.AddEvent("eigensolver_failed")
		slog.Warn("spectral analysis failed, substituting zeros",
			slog.Int("node_count", n),
		)
		return &SpectralResult{Approximate: true}
	}

	values := eig.Values(nil)
	for i, v := range values {
		if math.Abs(v) < ZeroEigenvalueTolerance {
			values[i] = 0
		}
	}

	result := &SpectralResult{
		FiedlerValue: values[1],
		SpectralGap:  values[1] - values[0],
		Connected:    values[1] > 0,
	}

	span.SetAttributes(
		attribute.Float64("fiedler_value", result.FiedlerValue),
		attribute.Float64("spectral_gap", result.SpectralGap),
		attribute.Bool("connected", result.Connected),
	)

	return result
}
