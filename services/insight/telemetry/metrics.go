// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires the fusion engine's OTel instruments: run and
// stage counters/histograms plus the degradation counters that make
// graceful-degradation events visible instead of silent.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the insight engine.
//
// Description:
//
//	Counters and histograms for pipeline runs, stage timing, and the
//	degradation paths (phantom edges, non-convergence, missing signals).
//	All metrics use the "insight_" prefix for consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- Pipeline Metrics ---

	// RunsTotal counts engine runs by outcome.
	RunsTotal metric.Int64Counter

	// RunDuration records full-run duration in seconds.
	RunDuration metric.Float64Histogram

	// StageDuration records per-stage duration in seconds, attributed by
	// stage name.
	StageDuration metric.Float64Histogram

	// FilesAnalyzed counts files per run.
	FilesAnalyzed metric.Int64Counter

	// --- Degradation Metrics ---

	// PhantomEdgesTotal counts edges dropped for undeclared targets.
	PhantomEdgesTotal metric.Int64Counter

	// ConvergenceFailuresTotal counts iterative algorithms that hit their
	// iteration cap, attributed by algorithm.
	ConvergenceFailuresTotal metric.Int64Counter

	// DegradedSignalsTotal counts signals left absent because their
	// inputs were missing or degenerate.
	DegradedSignalsTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered.
//
// Description:
//
//	Registers every pre-defined instrument with the provided meter.
//	Returns an error if any registration fails.
//
// Thread Safety: Safe for concurrent use after creation.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// --- Pipeline Metrics ---
	m.RunsTotal, err = meter.Int64Counter(
		"insight_runs_total",
		metric.WithDescription("Total engine runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs_total: %w", err)
	}

	m.RunDuration, err = meter.Float64Histogram(
		"insight_run_duration_seconds",
		metric.WithDescription("Full pipeline run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, fmt.Errorf("create run_duration: %w", err)
	}

	m.StageDuration, err = meter.Float64Histogram(
		"insight_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create stage_duration: %w", err)
	}

	m.FilesAnalyzed, err = meter.Int64Counter(
		"insight_files_analyzed_total",
		metric.WithDescription("Total files analyzed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create files_analyzed_total: %w", err)
	}

	// --- Degradation Metrics ---
	m.PhantomEdgesTotal, err = meter.Int64Counter(
		"insight_phantom_edges_total",
		metric.WithDescription("Edges dropped for undeclared targets"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create phantom_edges_total: %w", err)
	}

	m.ConvergenceFailuresTotal, err = meter.Int64Counter(
		"insight_convergence_failures_total",
		metric.WithDescription("Iterative algorithms that hit their iteration cap"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create convergence_failures_total: %w", err)
	}

	m.DegradedSignalsTotal, err = meter.Int64Counter(
		"insight_degraded_signals_total",
		metric.WithDescription("Signals left absent due to missing or degenerate inputs"),
		metric.WithUnit("{signal}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create degraded_signals_total: %w", err)
	}

	return m, nil
}
