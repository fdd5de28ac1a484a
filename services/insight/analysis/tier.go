// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analysis

// =============================================================================
// Population-size tiers
// =============================================================================

// Tier classifies how much statistical weight percentile ranks carry for a
// given population size.
type Tier string

const (
	// TierAbsolute covers populations too small for percentiles to mean
	// anything; consumers fall back to absolute thresholds.
	TierAbsolute Tier = "absolute"

	// TierBayesian covers mid-size populations where percentiles are
	// computed but should be read with low confidence.
	TierBayesian Tier = "bayesian"

	// TierFull covers populations large enough for percentiles to be
	// trusted directly.
	TierFull Tier = "full"
)

// Tier boundaries by file count.
const (
	BayesianTierMinFiles = 15
	FullTierMinFiles     = 50
)

// TierFor returns the tier for a population of fileCount files.
func TierFor(fileCount int) Tier {
	switch {
	case fileCount < BayesianTierMinFiles:
		return TierAbsolute
	case fileCount < FullTierMinFiles:
		return TierBayesian
	default:
		return TierFull
	}
}

// UsesPercentiles reports whether the tier computes percentile ranks.
func (t Tier) UsesPercentiles() bool { return t != TierAbsolute }
