// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package signals

import (
	"fmt"
	"sort"
)

// =============================================================================
// Signal metadata registry
// =============================================================================

// Meta describes one signal in the catalog.
type Meta struct {
	DType DType
	Scope Scope

	// Percentileable marks per-file numeric signals that get percentile
	// ranks in the Normalize stage.
	Percentileable bool

	Polarity Polarity

	// AbsoluteThreshold is the concerning-value cutoff used when the
	// population is too small for percentiles. Nil when no absolute
	// judgment makes sense.
	AbsoluteThreshold *float64

	// ProducedBy is the single pipeline stage allowed to write the signal.
	ProducedBy Stage
}

var registry = map[Signal]Meta{}

// register panics on double registration; the catalog is single-owner by
// construction and a duplicate is a programming error caught at init.
func register(sig Signal, meta Meta) {
	if _, exists := registry[sig]; exists {
		panic(fmt.Sprintf("signal %q registered twice", sig))
	}
	registry[sig] = meta
}

func threshold(v float64) *float64 { return &v }

func init() {
	// Structural and semantic file signals (Collect).
	register(Lines, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(500), ProducedBy: StageCollect})
	register(FunctionCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(30), ProducedBy: StageCollect})
	register(ClassCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(MaxNesting, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(4), ProducedBy: StageCollect})
	register(ImplGini, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0.6), ProducedBy: StageCollect})
	register(StubRatio, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0.5), ProducedBy: StageCollect})
	register(ImportCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(RoleSignal, Meta{DType: DTypeString, Scope: ScopeFile, Polarity: Neutral, ProducedBy: StageCollect})
	register(ConceptCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(ConceptEntropy, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(1.5), ProducedBy: StageCollect})
	register(NamingDrift, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0.7), ProducedBy: StageCollect})
	register(TodoDensity, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0.05), ProducedBy: StageCollect})
	register(DocstringCoverage, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(CompressionRatio, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(SemanticCoherence, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(CognitiveLoad, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, ProducedBy: StageCollect})

	// Graph file signals (Collect).
	register(PageRank, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(Betweenness, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(InDegree, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(OutDegree, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(BlastRadiusSize, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(Depth, Meta{DType: DTypeInt, Scope: ScopeFile, Polarity: Neutral, ProducedBy: StageCollect})
	register(IsOrphan, Meta{DType: DTypeBool, Scope: ScopeFile, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(PhantomImportCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0), ProducedBy: StageCollect})
	register(BrokenCallCount, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0), ProducedBy: StageCollect})
	register(Community, Meta{DType: DTypeInt, Scope: ScopeFile, Polarity: Neutral, ProducedBy: StageCollect})

	// Temporal file signals (Collect).
	register(TotalChanges, Meta{DType: DTypeInt, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(ChurnTrajectory, Meta{DType: DTypeString, Scope: ScopeFile, Polarity: Neutral, ProducedBy: StageCollect})
	register(ChurnSlope, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(ChurnCV, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(1.0), ProducedBy: StageCollect})
	register(BusFactor, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsGood, AbsoluteThreshold: threshold(1.0), ProducedBy: StageCollect})
	register(AuthorEntropy, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(FixRatio, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: HighIsBad, AbsoluteThreshold: threshold(0.4), ProducedBy: StageCollect})
	register(RefactorRatio, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})
	register(ChangeEntropy, Meta{DType: DTypeFloat, Scope: ScopeFile, Percentileable: true, Polarity: Neutral, ProducedBy: StageCollect})

	// Fused file signals.
	register(RawRisk, Meta{DType: DTypeFloat, Scope: ScopeFile, Polarity: HighIsBad, ProducedBy: StageRawRisk})
	register(RiskScore, Meta{DType: DTypeFloat, Scope: ScopeFile, Polarity: HighIsBad, ProducedBy: StageComposites})
	register(WiringQuality, Meta{DType: DTypeFloat, Scope: ScopeFile, Polarity: HighIsGood, ProducedBy: StageComposites})
	register(FileHealthScore, Meta{DType: DTypeFloat, Scope: ScopeFile, Polarity: HighIsGood, ProducedBy: StageComposites})
	register(DeltaH, Meta{DType: DTypeFloat, Scope: ScopeFile, Polarity: HighIsBad, ProducedBy: StageHealthLaplacian})

	// Module signals.
	register(Cohesion, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(Coupling, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(Instability, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: Neutral, ProducedBy: StageCollect})
	register(Abstractness, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: Neutral, ProducedBy: StageCollect})
	register(MainSeqDistance, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(BoundaryAlignment, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(LayerViolationCount, Meta{DType: DTypeInt, Scope: ScopeModule, Polarity: HighIsBad, AbsoluteThreshold: threshold(0), ProducedBy: StageCollect})
	register(RoleConsistency, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(Velocity, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: Neutral, ProducedBy: StageModuleTemporal})
	register(CoordinationCost, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageModuleTemporal})
	register(KnowledgeGini, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageModuleTemporal})
	register(ModuleBusFactor, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsGood, ProducedBy: StageModuleTemporal})
	register(MeanCognitiveLoad, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(FileCount, Meta{DType: DTypeInt, Scope: ScopeModule, Polarity: Neutral, ProducedBy: StageCollect})
	register(HotspotCount, Meta{DType: DTypeInt, Scope: ScopeModule, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(HealthScore, Meta{DType: DTypeFloat, Scope: ScopeModule, Polarity: HighIsGood, ProducedBy: StageComposites})

	// Global signals.
	register(Modularity, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsGood, ProducedBy: StageCollect})
	register(FiedlerValue, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: Neutral, ProducedBy: StageCollect})
	register(SpectralGap, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: Neutral, ProducedBy: StageCollect})
	register(CycleCount, Meta{DType: DTypeInt, Scope: ScopeGlobal, Polarity: HighIsBad, AbsoluteThreshold: threshold(0), ProducedBy: StageCollect})
	register(CentralityGini, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(OrphanRatio, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(PhantomRatio, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(GlueDeficit, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(ViolationRate, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageCollect})
	register(TeamSize, Meta{DType: DTypeInt, Scope: ScopeGlobal, Polarity: Neutral, ProducedBy: StageCollect})
	register(WiringScore, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsGood, ProducedBy: StageComposites})
	register(ArchitectureHealth, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsGood, ProducedBy: StageComposites})
	register(TeamRisk, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsBad, ProducedBy: StageComposites})
	register(CodebaseHealth, Meta{DType: DTypeFloat, Scope: ScopeGlobal, Polarity: HighIsGood, ProducedBy: StageComposites})
}

// MetaFor looks up a signal's metadata.
func MetaFor(sig Signal) (Meta, bool) {
	m, ok := registry[sig]
	return m, ok
}

// All returns every registered signal, sorted by name.
func All() []Signal {
	out := make([]Signal, 0, len(registry))
	for sig := range registry {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Percentileable returns the per-file numeric signals that receive
// percentile ranks, sorted by name.
func Percentileable() []Signal {
	var out []Signal
	for sig, meta := range registry {
		if meta.Percentileable && meta.Scope == ScopeFile {
			out = append(out, sig)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
