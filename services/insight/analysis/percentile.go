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

import (
	"sort"
)

// =============================================================================
// Percentile rank table
// =============================================================================

// PercentileTable answers percentile-rank queries against a fixed sample.
// Build once per signal per run; lookups are O(log n).
type PercentileTable struct {
	sorted []float64
}

// NewPercentileTable sorts the sample once and returns the table.
// The input slice is not retained.
func NewPercentileTable(values []float64) *PercentileTable {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return &PercentileTable{sorted: sorted}
}

// Size returns the sample size.
func (t *PercentileTable) Size() int { return len(t.sorted) }

// Rank returns the fraction of sample values strictly less than v, in
// [0, 1]. An empty table returns 0.
func (t *PercentileTable) Rank(v float64) float64 {
	n := len(t.sorted)
	if n == 0 {
		return 0
	}
	below := sort.SearchFloat64s(t.sorted, v)
	// SearchFloat64s finds the first index >= v, which is exactly the
	// count of strictly smaller values.
	return float64(below) / float64(n)
}
