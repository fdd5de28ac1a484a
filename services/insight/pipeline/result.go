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
	"time"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/graph"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Provenance describes how a result was produced.
type Provenance struct {
	// RunID uniquely identifies this engine run.
	RunID string `json:"run_id"`

	// Tier is the percentile-confidence tier the population landed in.
	Tier analysis.Tier `json:"tier"`

	// Approximate is set when any iterative algorithm failed to converge
	// or a solver degraded; point estimates are still usable but softer.
	Approximate bool `json:"approximate"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Stages lists per-stage wall time in execution order.
	Stages []StageTiming `json:"stages"`
}

// Result is the complete output of one engine run.
type Result struct {
	// Field holds every computed signal, tier by tier.
	Field *signals.Field

	// Communities is the Louvain partition of the import graph.
	Communities *graph.CommunityResult

	// DeltaH maps file path to its local health anomaly: how much worse
	// (positive) or better (negative) a file is than its import
	// neighborhood.
	DeltaH map[string]float64

	Provenance Provenance
}
