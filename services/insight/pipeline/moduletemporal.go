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
	"math"
	"time"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// =============================================================================
// Stage 4: Module Temporal
// =============================================================================

// criticalPageRankPercentile marks files whose centrality rank makes
// their bus factor a module-level concern.
const criticalPageRankPercentile = 0.75

// moduleHistory accumulates the commits touching one module.
type moduleHistory struct {
	commits       int
	authorCommits map[string]int
	first, last   time.Time
}

// stageModuleTemporal derives per-module team dynamics from the commit
// history: how fast the module moves, how many people it takes, how
// concentrated its knowledge is, and how exposed its critical files are.
func (p *Pipeline) stageModuleTemporal(ctx context.Context, st *runState) {
	histories := p.moduleHistories(st)

	for _, name := range st.field.ModuleNames() {
		ms := st.field.Module(name)
		h := histories[name]
		if h != nil && h.commits > 0 {
			spanDays := h.last.Sub(h.first).Hours() / 24
			weeks := math.Max(spanDays/7, 1)
			ms.Set(signals.Velocity, float64(h.commits)/weeks)

			ms.Set(signals.CoordinationCost, float64(len(h.authorCommits))/float64(h.commits))

			// Knowledge concentration needs at least two authors to
			// compare.
			if len(h.authorCommits) >= 2 {
				counts := make([]float64, 0, len(h.authorCommits))
				for _, c := range h.authorCommits {
					counts = append(counts, float64(c))
				}
				ms.Set(signals.KnowledgeGini, analysis.Gini(counts, false))
			}
		}

		if bf, ok := p.moduleBusFactor(st, ms.Files); ok {
			ms.Set(signals.ModuleBusFactor, bf)
		}
	}
}

// moduleHistories folds the commit log into per-module summaries. A
// commit counts once per module it touches.
func (p *Pipeline) moduleHistories(st *runState) map[string]*moduleHistory {
	histories := make(map[string]*moduleHistory)
	for i := range st.snap.Commits {
		c := &st.snap.Commits[i]
		touched := make(map[string]struct{})
		for _, path := range c.Files {
			fs, known := st.field.Files[path]
			if !known {
				continue
			}
			touched[fs.Module] = struct{}{}
		}
		for module := range touched {
			h := histories[module]
			if h == nil {
				h = &moduleHistory{authorCommits: make(map[string]int), first: c.Timestamp, last: c.Timestamp}
				histories[module] = h
			}
			h.commits++
			h.authorCommits[c.Author]++
			if c.Timestamp.Before(h.first) {
				h.first = c.Timestamp
			}
			if c.Timestamp.After(h.last) {
				h.last = c.Timestamp
			}
		}
	}
	return histories
}

// moduleBusFactor is the weakest bus factor among the module's critical
// files, falling back to the module mean when no file ranks as critical
// or percentiles are unavailable.
func (p *Pipeline) moduleBusFactor(st *runState, files []string) (float64, bool) {
	criticalMin := math.Inf(1)
	var all []float64

	for _, path := range files {
		fs := st.field.Files[path]
		bf, ok := fs.Get(signals.BusFactor)
		if !ok {
			continue
		}
		all = append(all, bf)
		if rank, ranked := fs.Percentile(signals.PageRank); ranked && rank > criticalPageRankPercentile {
			if bf < criticalMin {
				criticalMin = bf
			}
		}
	}

	if !math.IsInf(criticalMin, 1) {
		return criticalMin, true
	}
	if len(all) > 0 {
		return analysis.Mean(all), true
	}
	return 0, false
}
