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
	"context"

	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// =============================================================================
// Stage 2: Raw Risk
// =============================================================================

// instabilityHigh and instabilityLow translate the churn trajectory into
// a risk contribution: volatile files carry full weight, quiet ones a
// floor above zero.
const (
	instabilityHigh = 1.0
	instabilityLow  = 0.3
)

// stageRawRisk computes the population-free risk estimate for every
// file. Each centrality-like term is normalized by the population
// maximum, so raw_risk compares files within this snapshot without
// needing a percentile baseline. The Laplacian stage reads these values;
// percentile-based risk_score comes later and separately.
func (p *Pipeline) stageRawRisk(ctx context.Context, st *runState) {
	maxPageRank := fieldMax(st, signals.PageRank)
	maxBlast := fieldMax(st, signals.BlastRadiusSize)
	maxCogLoad := fieldMax(st, signals.CognitiveLoad)
	maxBusFactor := fieldMax(st, signals.BusFactor)

	w := p.cfg.Weights.RawRisk

	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]

		instability := instabilityLow
		if fs.Trajectory.Volatile() {
			instability = instabilityHigh
		}

		// bus_factor is protective: high is good, so its complement
		// contributes risk.
		busTerm := 1.0 - normByMax(fs.MustGet(signals.BusFactor), maxBusFactor)

		risk := w.PageRank*normByMax(fs.MustGet(signals.PageRank), maxPageRank) +
			w.BlastRadius*normByMax(fs.MustGet(signals.BlastRadiusSize), maxBlast) +
			w.CognitiveLoad*normByMax(fs.MustGet(signals.CognitiveLoad), maxCogLoad) +
			w.Instability*instability +
			w.BusFactor*busTerm

		fs.Set(signals.RawRisk, clamp01(risk))
	}
}

// fieldMax is the population maximum of one file signal, 0 when no file
// carries it.
func fieldMax(st *runState, sig signals.Signal) float64 {
	var max float64
	for _, fs := range st.field.Files {
		if v, ok := fs.Get(sig); ok && v > max {
			max = v
		}
	}
	return max
}

// normByMax scales v into [0,1] by the population maximum; a zero
// maximum means the signal carries no information and contributes 0.
func normByMax(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}
