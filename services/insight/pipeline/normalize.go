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

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// =============================================================================
// Stage 3: Normalize
// =============================================================================

// stageNormalize ranks every percentileable file signal against the
// snapshot's own population. In the absolute tier the population is too
// small for ranks to mean anything, so the stage is a no-op and
// percentile-dependent composites stay absent downstream.
//
// A percentile here is the fraction of the population strictly below the
// value, so ties share the rank of their group's floor and a uniform
// population ranks 0 everywhere.
func (p *Pipeline) stageNormalize(ctx context.Context, st *runState) {
	if !st.tier.UsesPercentiles() {
		return
	}

	paths := st.field.FilePaths()

	for _, sig := range signals.Percentileable() {
		var population []float64
		for _, path := range paths {
			if v, ok := st.field.Files[path].Get(sig); ok {
				population = append(population, v)
			}
		}
		if len(population) == 0 {
			continue
		}

		table := analysis.NewPercentileTable(population)
		floor, hasFloor := p.floorFor(sig)

		for _, path := range paths {
			fs := st.field.Files[path]
			v, ok := fs.Get(sig)
			if !ok {
				continue
			}
			rank := table.Rank(v)
			// Below the absolute floor a high rank is noise, not signal.
			if hasFloor && v < floor {
				rank = 0
			}
			fs.SetPercentile(sig, rank)
		}
	}
}

// floorFor maps a signal to its configured absolute floor, if it has one.
func (p *Pipeline) floorFor(sig signals.Signal) (float64, bool) {
	switch sig {
	case signals.PageRank:
		return p.cfg.Floors.PageRank, true
	case signals.BlastRadiusSize:
		return p.cfg.Floors.BlastRadiusSize, true
	case signals.CognitiveLoad:
		return p.cfg.Floors.CognitiveLoad, true
	case signals.Lines:
		return p.cfg.Floors.Lines, true
	default:
		return 0, false
	}
}
