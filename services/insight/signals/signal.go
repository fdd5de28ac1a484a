// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package signals defines the typed signal catalog and the SignalField
// container the fusion pipeline writes into. Every signal has exactly one
// producing stage; later stages only add, never overwrite. A signal that
// cannot be computed is simply absent, which is how graceful degradation
// is represented throughout the engine.
package signals

// Signal names one measurement in the catalog.
type Signal string

// Scope says which tier of the SignalField a signal lives in.
type Scope int

const (
	ScopeFile Scope = iota
	ScopeModule
	ScopeGlobal
)

// DType is the value type of a signal.
type DType int

const (
	DTypeFloat DType = iota
	DTypeInt
	DTypeBool
	DTypeString
)

// Polarity says which direction of a signal is concerning.
type Polarity int

const (
	Neutral Polarity = iota
	HighIsBad
	HighIsGood
)

// Stage identifies the pipeline stage that owns a signal.
type Stage int

const (
	StageCollect Stage = iota + 1
	StageRawRisk
	StageNormalize
	StageModuleTemporal
	StageComposites
	StageHealthLaplacian
)

// File-scope structural and semantic signals.
const (
	Lines             Signal = "lines"
	FunctionCount     Signal = "function_count"
	ClassCount        Signal = "class_count"
	MaxNesting        Signal = "max_nesting"
	ImplGini          Signal = "impl_gini"
	StubRatio         Signal = "stub_ratio"
	ImportCount       Signal = "import_count"
	RoleSignal        Signal = "role"
	ConceptCount      Signal = "concept_count"
	ConceptEntropy    Signal = "concept_entropy"
	NamingDrift       Signal = "naming_drift"
	TodoDensity       Signal = "todo_density"
	DocstringCoverage Signal = "docstring_coverage"
	CompressionRatio  Signal = "compression_ratio"
	SemanticCoherence Signal = "semantic_coherence"
	CognitiveLoad     Signal = "cognitive_load"
)

// File-scope graph signals.
const (
	PageRank           Signal = "pagerank"
	Betweenness        Signal = "betweenness"
	InDegree           Signal = "in_degree"
	OutDegree          Signal = "out_degree"
	BlastRadiusSize    Signal = "blast_radius_size"
	Depth              Signal = "depth"
	IsOrphan           Signal = "is_orphan"
	PhantomImportCount Signal = "phantom_import_count"
	BrokenCallCount    Signal = "broken_call_count"
	Community          Signal = "community"
)

// File-scope temporal signals.
const (
	TotalChanges    Signal = "total_changes"
	ChurnTrajectory Signal = "churn_trajectory"
	ChurnSlope      Signal = "churn_slope"
	ChurnCV         Signal = "churn_cv"
	BusFactor       Signal = "bus_factor"
	AuthorEntropy   Signal = "author_entropy"
	FixRatio        Signal = "fix_ratio"
	RefactorRatio   Signal = "refactor_ratio"
	ChangeEntropy   Signal = "change_entropy"
)

// File-scope fused signals.
const (
	RawRisk         Signal = "raw_risk"
	RiskScore       Signal = "risk_score"
	WiringQuality   Signal = "wiring_quality"
	FileHealthScore Signal = "file_health_score"
	DeltaH          Signal = "delta_h"
)

// Module-scope signals.
const (
	Cohesion            Signal = "cohesion"
	Coupling            Signal = "coupling"
	Instability         Signal = "instability"
	Abstractness        Signal = "abstractness"
	MainSeqDistance     Signal = "main_seq_distance"
	BoundaryAlignment   Signal = "boundary_alignment"
	LayerViolationCount Signal = "layer_violation_count"
	RoleConsistency     Signal = "role_consistency"
	Velocity            Signal = "velocity"
	CoordinationCost    Signal = "coordination_cost"
	KnowledgeGini       Signal = "knowledge_gini"
	ModuleBusFactor     Signal = "module_bus_factor"
	MeanCognitiveLoad   Signal = "mean_cognitive_load"
	FileCount           Signal = "file_count"
	HotspotCount        Signal = "hotspot_count"
	HealthScore         Signal = "health_score"
)

// Global signals.
const (
	Modularity         Signal = "modularity"
	FiedlerValue       Signal = "fiedler_value"
	SpectralGap        Signal = "spectral_gap"
	CycleCount         Signal = "cycle_count"
	CentralityGini     Signal = "centrality_gini"
	OrphanRatio        Signal = "orphan_ratio"
	PhantomRatio       Signal = "phantom_ratio"
	GlueDeficit        Signal = "glue_deficit"
	ViolationRate      Signal = "violation_rate"
	WiringScore        Signal = "wiring_score"
	ArchitectureHealth Signal = "architecture_health"
	TeamRisk           Signal = "team_risk"
	CodebaseHealth     Signal = "codebase_health"
	TeamSize           Signal = "team_size"
)
