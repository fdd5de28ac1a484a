// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report turns an engine result into its external presentation:
// 1-10 display scores, health bands, and the JSON report document.
package report

import (
	"math"
)

// Band labels a display score range.
type Band string

const (
	BandHealthy  Band = "healthy"
	BandModerate Band = "moderate"
	BandAtRisk   Band = "at_risk"
	BandCritical Band = "critical"
)

// Band cutoffs on the 1-10 display scale.
const (
	healthyMin  = 7.78
	moderateMin = 5.56
	atRiskMin   = 3.33
)

// DisplayScore maps an internal [0,1] score onto the 1-10 scale users
// see, rounded to one decimal.
func DisplayScore(v float64) float64 {
	return math.Round(v*90+10) / 10
}

// BandFor classifies a display score.
func BandFor(display float64) Band {
	switch {
	case display >= healthyMin:
		return BandHealthy
	case display >= moderateMin:
		return BandModerate
	case display >= atRiskMin:
		return BandAtRisk
	default:
		return BandCritical
	}
}
