// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analysis holds the statistics toolkit behind the fusion engine:
// inequality and dispersion measures, entropy, percentile tables, and the
// population-size tier policy that decides when percentiles are meaningful
// at all.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// Inequality and dispersion
// =============================================================================

// Gini computes the Gini coefficient of a non-negative sample.
//
// Description:
//
//	Sorts ascending and applies G = (2 * sum(i * x_i)) / (n * sum(x)) -
//	(n + 1) / n with 1-based ranks. Empty, single-element, and all-zero
//	samples have no meaningful inequality and return 0.
//
// Inputs:
//
//   - values: sample values; negatives are clamped to 0.
//   - biasCorrected: multiply by n/(n-1) for small-sample correction.
//
// Outputs:
//
//   - float64: coefficient in [0, 1].
func Gini(values []float64, biasCorrected bool) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}

	sorted := make([]float64, n)
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		sorted[i] = v
	}
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}

	g := 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
	if biasCorrected && n > 1 {
		g *= float64(n) / float64(n-1)
	}
	return clamp01(g)
}

// ShannonEntropy computes H = -sum(p * log2 p) from raw counts.
// Zero counts contribute nothing (0 * log 0 := 0).
func ShannonEntropy(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

// NormalizedEntropy rescales ShannonEntropy into [0, 1] by dividing by
// log2(n) over the positive-count categories. One category or fewer
// returns 0.
func NormalizedEntropy(counts []float64) float64 {
	categories := 0
	for _, c := range counts {
		if c > 0 {
			categories++
		}
	}
	if categories <= 1 {
		return 0
	}
	return ShannonEntropy(counts) / math.Log2(float64(categories))
}

// Mean returns the arithmetic mean, 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// PopStdDev returns the population standard deviation, 0 for samples of
// size < 2.
func PopStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := stat.Mean(values, nil)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// CoefficientOfVariation returns sigma/mu using the population standard
// deviation. The second return is false when the mean is 0 and the ratio
// is undefined.
func CoefficientOfVariation(values []float64) (float64, bool) {
	mean := Mean(values)
	if mean == 0 {
		return 0, false
	}
	return PopStdDev(values) / mean, true
}

// Median returns the standard median (midpoint average for even sizes),
// 0 for an empty sample.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// LowerMedian returns the lower median (no averaging), used where a value
// that actually occurs in the sample is wanted. 0 for an empty sample.
func LowerMedian(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[(n-1)/2]
}

// LinearSlope fits y = a + b*x over equally spaced points x = 0..n-1 and
// returns b. Samples of size < 2 return 0.
func LinearSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) {
		return 0
	}
	return beta
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
