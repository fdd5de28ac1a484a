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

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// =============================================================================
// Stage 5: Composites
// =============================================================================

// conwayAlignment is fixed until the snapshot carries author-distance
// data to compute it from.
const conwayAlignment = 1.0

// cloneRatio is fixed until the snapshot carries clone-pair data.
const cloneRatio = 0.0

// stageComposites fuses the collected and normalized signals into the
// scored composites at every tier. Percentile-dependent composites stay
// absent in absolute-tier runs.
func (p *Pipeline) stageComposites(ctx context.Context, st *runState) {
	if !st.tier.UsesPercentiles() && p.metrics != nil {
		// risk_score and file_health_score degrade per file below the
		// percentile population threshold.
		p.metrics.DegradedSignalsTotal.Add(ctx, int64(2*len(st.field.Files)))
	}
	for _, path := range st.field.FilePaths() {
		p.compositeFile(st, st.field.Files[path])
	}
	for _, name := range st.field.ModuleNames() {
		p.compositeModule(st, st.field.Module(name))
	}
	p.compositeGlobal(st)
}

func (p *Pipeline) compositeFile(st *runState, fs *signals.FileSignals) {
	orphan := boolToFloat(fs.IsOrphan)
	stub := fs.MustGet(signals.StubRatio)

	// Wiring quality penalizes disconnection evidence, each term scaled
	// to its opportunity: phantoms per declared import, broken calls per
	// graph edge.
	imports := math.Max(fs.MustGet(signals.ImportCount), 1)
	degree := math.Max(fs.MustGet(signals.InDegree)+fs.MustGet(signals.OutDegree), 1)
	wq := p.cfg.Weights.WiringQuality
	wiring := clamp01(1 - (wq.Orphan*orphan +
		wq.Stub*stub +
		wq.Phantom*fs.MustGet(signals.PhantomImportCount)/imports +
		wq.Broken*fs.MustGet(signals.BrokenCallCount)/degree))
	fs.Set(signals.WiringQuality, wiring)

	if !st.tier.UsesPercentiles() {
		return
	}

	pctPageRank, _ := fs.Percentile(signals.PageRank)
	pctBlast, _ := fs.Percentile(signals.BlastRadiusSize)
	pctCogLoad, _ := fs.Percentile(signals.CognitiveLoad)

	instability := instabilityLow
	if fs.Trajectory.Volatile() {
		instability = instabilityHigh
	}

	busTerm := 1.0 - normByMax(fs.MustGet(signals.BusFactor), fieldMax(st, signals.BusFactor))

	rw := p.cfg.Weights.RiskScore
	risk := rw.PageRank*pctPageRank +
		rw.BlastRadius*pctBlast +
		rw.CognitiveLoad*pctCogLoad +
		rw.Instability*instability +
		rw.BusFactor*busTerm

	// A file nobody has ever changed cannot be a change-risk hotspot,
	// whatever its structure looks like.
	if fs.MustGet(signals.TotalChanges) == 0 {
		risk = 0
	}
	risk = clamp01(risk)
	fs.Set(signals.RiskScore, risk)

	fw := p.cfg.Weights.FileHealth
	health := 1 - (fw.Risk*risk +
		fw.Wiring*(1-wiring) +
		fw.CognitiveLoad*pctCogLoad +
		fw.Stub*stub +
		fw.Orphan*orphan)
	fs.Set(signals.FileHealthScore, clamp01(health))
}

func (p *Pipeline) compositeModule(st *runState, ms *signals.ModuleSignals) {
	var stubs []float64
	for _, path := range ms.Files {
		stubs = append(stubs, st.field.Files[path].MustGet(signals.StubRatio))
	}
	meanStub := analysis.Mean(stubs)

	w := p.cfg.Weights.ModuleHealth
	health := w.Cohesion*ms.MustGet(signals.Cohesion) +
		w.Coupling*(1-ms.MustGet(signals.Coupling)) +
		w.Boundary*ms.MustGet(signals.BoundaryAlignment) +
		w.RoleConsistency*ms.MustGet(signals.RoleConsistency) +
		w.Stub*(1-meanStub)

	// The main-sequence distance needs both instability and abstractness.
	// When it is undefined the remaining terms are rescaled to keep the
	// composite on the same [0,1] footing.
	if distance, ok := ms.Get(signals.MainSeqDistance); ok {
		health += w.Distance * (1 - distance)
	} else {
		health *= 1 / (1 - w.Distance)
	}

	ms.Set(signals.HealthScore, clamp01(health))
}

func (p *Pipeline) compositeGlobal(st *runState) {
	g := st.field.Global

	var stubs []float64
	for _, path := range st.field.FilePaths() {
		stubs = append(stubs, st.field.Files[path].MustGet(signals.StubRatio))
	}
	meanStub := analysis.Mean(stubs)

	ww := p.cfg.Weights.WiringScore
	wiring := clamp01(1 - (ww.Orphan*g.MustGet(signals.OrphanRatio) +
		ww.Phantom*g.MustGet(signals.PhantomRatio) +
		ww.Glue*g.MustGet(signals.GlueDeficit) +
		ww.Stub*meanStub +
		ww.Clone*cloneRatio))
	g.Set(signals.WiringScore, wiring)

	arch := p.architectureHealth(st)
	g.Set(signals.ArchitectureHealth, arch)

	minCriticalBF := p.minCriticalBusFactor(st)

	tw := p.cfg.Weights.TeamRisk
	teamRisk := 1 - (tw.BusFactor*math.Min(minCriticalBF, 3)/3 +
		tw.Knowledge*(1-p.maxKnowledgeGini(st)) +
		tw.Coordination*(1-math.Min(p.meanCoordinationCost(st), 5)/5) +
		tw.Conway*conwayAlignment)
	g.Set(signals.TeamRisk, clamp01(teamRisk))

	team := math.Max(g.MustGet(signals.TeamSize), 1)
	cw := p.cfg.Weights.CodebaseHealth
	overall := cw.Architecture*arch +
		cw.Wiring*wiring +
		cw.BusFactor*math.Min(minCriticalBF, team)/team +
		cw.Modularity*g.MustGet(signals.Modularity)
	g.Set(signals.CodebaseHealth, clamp01(overall))
}

// architectureHealth blends layering cleanliness with the mean Martin
// metrics across modules. Undefined main-sequence distances are left
// out of their mean rather than counted as zero.
func (p *Pipeline) architectureHealth(st *runState) float64 {
	var cohesions, couplings, distances, alignments []float64
	for _, name := range st.field.ModuleNames() {
		ms := st.field.Module(name)
		cohesions = append(cohesions, ms.MustGet(signals.Cohesion))
		couplings = append(couplings, ms.MustGet(signals.Coupling))
		if d, ok := ms.Get(signals.MainSeqDistance); ok {
			distances = append(distances, d)
		}
		if a, ok := ms.Get(signals.BoundaryAlignment); ok {
			alignments = append(alignments, a)
		}
	}

	violationRate := st.field.Global.MustGet(signals.ViolationRate)

	w := p.cfg.Weights.ArchitectureHealth
	health := w.Violations*(1-violationRate) +
		w.Cohesion*analysis.Mean(cohesions) +
		w.Coupling*(1-analysis.Mean(couplings)) +
		w.Distance*(1-analysis.Mean(distances)) +
		w.Alignment*analysis.Mean(alignments)
	return clamp01(health)
}

// minCriticalBusFactor is the weakest bus factor among the files whose
// centrality rank marks them critical, falling back to the weakest bus
// factor overall when percentiles are unavailable or no file qualifies.
func (p *Pipeline) minCriticalBusFactor(st *runState) float64 {
	criticalMin, overallMin := math.Inf(1), math.Inf(1)
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		bf, ok := fs.Get(signals.BusFactor)
		if !ok {
			continue
		}
		if bf < overallMin {
			overallMin = bf
		}
		if rank, ranked := fs.Percentile(signals.PageRank); ranked && rank > criticalPageRankPercentile {
			if bf < criticalMin {
				criticalMin = bf
			}
		}
	}
	switch {
	case !math.IsInf(criticalMin, 1):
		return criticalMin
	case !math.IsInf(overallMin, 1):
		return overallMin
	default:
		return 1
	}
}

func (p *Pipeline) maxKnowledgeGini(st *runState) float64 {
	var max float64
	for _, name := range st.field.ModuleNames() {
		if g, ok := st.field.Module(name).Get(signals.KnowledgeGini); ok && g > max {
			max = g
		}
	}
	return max
}

func (p *Pipeline) meanCoordinationCost(st *runState) float64 {
	var costs []float64
	for _, name := range st.field.ModuleNames() {
		if c, ok := st.field.Module(name).Get(signals.CoordinationCost); ok {
			costs = append(costs, c)
		}
	}
	return analysis.Mean(costs)
}
