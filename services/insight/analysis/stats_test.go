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
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Gini tests
// =============================================================================

func TestGini(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single", values: []float64{5}, want: 0},
		{name: "all zero", values: []float64{0, 0, 0}, want: 0},
		{name: "perfect equality", values: []float64{3, 3, 3, 3}, want: 0},
		{name: "total concentration", values: []float64{0, 0, 0, 10}, want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Gini(tt.values, false), 1e-9)
		})
	}
}

func TestGini_Bounds(t *testing.T) {
	samples := [][]float64{
		{1, 2, 3, 4, 5},
		{100, 1, 1, 1},
		{0.5, 0.5, 0.1},
	}
	for _, sample := range samples {
		g := Gini(sample, false)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.LessOrEqual(t, g, 1.0)
	}
}

func TestGini_BiasCorrection(t *testing.T) {
	values := []float64{0, 0, 0, 10}
	assert.InDelta(t, 1.0, Gini(values, true), 1e-9, "corrected extreme concentration saturates")
}

// =============================================================================
// Entropy tests
// =============================================================================

func TestShannonEntropy(t *testing.T) {
	assert.Zero(t, ShannonEntropy(nil))
	assert.Zero(t, ShannonEntropy([]float64{4}))
	assert.InDelta(t, 1.0, ShannonEntropy([]float64{1, 1}), 1e-9)
	assert.InDelta(t, 2.0, ShannonEntropy([]float64{1, 1, 1, 1}), 1e-9)
	// Zero counts are skipped, not poisoned by log(0).
	assert.InDelta(t, 1.0, ShannonEntropy([]float64{3, 0, 3}), 1e-9)
}

func TestNormalizedEntropy(t *testing.T) {
	assert.Zero(t, NormalizedEntropy([]float64{7}))
	assert.InDelta(t, 1.0, NormalizedEntropy([]float64{2, 2, 2}), 1e-9)
	assert.Less(t, NormalizedEntropy([]float64{9, 1}), 1.0)
}

// =============================================================================
// Dispersion tests
// =============================================================================

func TestCoefficientOfVariation(t *testing.T) {
	cv, ok := CoefficientOfVariation([]float64{2, 2, 2})
	assert.True(t, ok)
	assert.Zero(t, cv)

	_, ok = CoefficientOfVariation([]float64{0, 0})
	assert.False(t, ok, "zero mean has no defined CV")

	cv, ok = CoefficientOfVariation([]float64{1, 3})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, cv, 1e-9)
}

func TestMedians(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
	assert.Equal(t, 2.0, LowerMedian([]float64{1, 2, 3, 4}))
	assert.Zero(t, Median(nil))
}

func TestLinearSlope(t *testing.T) {
	assert.Zero(t, LinearSlope([]float64{5}))
	assert.InDelta(t, 1.0, LinearSlope([]float64{0, 1, 2, 3}), 1e-9)
	assert.InDelta(t, -2.0, LinearSlope([]float64{6, 4, 2, 0}), 1e-9)
	assert.Zero(t, LinearSlope([]float64{3, 3, 3}))
}

// =============================================================================
// Percentile table tests
// =============================================================================

func TestPercentileTable_StrictlyLess(t *testing.T) {
	table := NewPercentileTable([]float64{1, 2, 2, 3})

	assert.Zero(t, table.Rank(1), "minimum has rank 0")
	assert.Equal(t, 0.25, table.Rank(2), "ties do not count toward rank")
	assert.Equal(t, 0.75, table.Rank(3))
	assert.Equal(t, 1.0, table.Rank(99))
	assert.Zero(t, table.Rank(-5))
}

func TestPercentileTable_Monotonic(t *testing.T) {
	table := NewPercentileTable([]float64{5, 1, 9, 3, 7})
	previous := -1.0
	for _, v := range []float64{0, 1, 2, 5, 8, 10} {
		rank := table.Rank(v)
		assert.GreaterOrEqual(t, rank, previous)
		previous = rank
	}
}

func TestPercentileTable_Empty(t *testing.T) {
	assert.Zero(t, NewPercentileTable(nil).Rank(1))
}

// =============================================================================
// Tier tests
// =============================================================================

func TestTierFor(t *testing.T) {
	tests := []struct {
		files int
		want  Tier
	}{
		{0, TierAbsolute},
		{14, TierAbsolute},
		{15, TierBayesian},
		{49, TierBayesian},
		{50, TierFull},
		{5000, TierFull},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.files), "files=%d", tt.files)
	}

	assert.False(t, TierAbsolute.UsesPercentiles())
	assert.True(t, TierBayesian.UsesPercentiles())
	assert.True(t, TierFull.UsesPercentiles())
}
