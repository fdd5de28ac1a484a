// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline runs the six-stage fusion over one snapshot:
//
//  1. Collect    - build the graph, run analytics, fill base signals
//  2. RawRisk    - max-normalized per-file risk blend
//  3. Normalize  - percentile ranks (tier permitting)
//  4. ModuleTemporal - per-module change dynamics
//  5. Composites - weighted risk/health/wiring scores
//  6. HealthLaplacian - local anomaly detection (delta_h)
//
// Stages are barrier-separated: a stage sees all of its predecessors'
// writes and none of its successors'. Writes are strictly additive, and
// cancellation is honored only between stages so a finished stage is never
// half-applied. After preflight, nothing in here returns an error; signals
// that cannot be computed are absent instead.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/config"
	"github.com/namanag97/shannon-insight-sub002/services/insight/graph"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
	"github.com/namanag97/shannon-insight-sub002/services/insight/telemetry"
	"github.com/namanag97/shannon-insight-sub002/services/insight/temporal"
)

var pipelineTracer = otel.Tracer("insight.pipeline")

// Pipeline is the fusion engine. Construct once, run per snapshot.
type Pipeline struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMetrics sets the metrics instruments. Default: none.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline. A nil cfg uses Default; an invalid cfg is
// rejected.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// runState carries everything the stages share for one run.
type runState struct {
	snap  *snapshot.Snapshot
	cfg   *config.Config
	field *signals.Field

	g           *graph.Graph
	records     map[string]*snapshot.FileRecord
	churn       map[string]*temporal.FileChurn
	communities *graph.CommunityResult
	arch        *architecture

	tier        analysis.Tier
	approximate bool
}

// stage is one barrier-separated pipeline step. Stages do not return
// errors; degradation is expressed through absent signals.
type stage struct {
	name string
	run  func(ctx context.Context, st *runState)
}

// Run executes the full pipeline over one snapshot.
//
// Description:
//
//	Preflight-validates the input (the single fatal path), then runs the
//	six stages in order. The context is checked between stages only; a
//	cancelled run returns ctx.Err() with no partial result.
//
// Thread Safety: Safe for concurrent use; each run has private state.
func (p *Pipeline) Run(ctx context.Context, snap *snapshot.Snapshot) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Run",
		trace.WithAttributes(attribute.String("run_id", runID)),
	)
	defer span.End()

	if err := snapshot.Preflight(snap); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("preflight: %w", err)
	}

	paths := make([]string, len(snap.Files))
	for i := range snap.Files {
		paths[i] = snap.Files[i].Path
	}

	st := &runState{
		snap:  snap,
		cfg:   p.cfg,
		field: signals.NewField(paths),
		tier:  analysis.TierFor(len(snap.Files)),
	}

	p.log.Info("pipeline starting",
		slog.String("run_id", runID),
		slog.Int("files", len(snap.Files)),
		slog.Int("edges", len(snap.Edges)),
		slog.Int("commits", len(snap.Commits)),
		slog.String("tier", string(st.tier)),
	)
	span.SetAttributes(
		attribute.Int("file_count", len(snap.Files)),
		attribute.String("tier", string(st.tier)),
	)

	stages := []stage{
		{name: "collect", run: p.stageCollect},
		{name: "raw_risk", run: p.stageRawRisk},
		{name: "normalize", run: p.stageNormalize},
		{name: "module_temporal", run: p.stageModuleTemporal},
		{name: "composites", run: p.stageComposites},
		{name: "health_laplacian", run: p.stageHealthLaplacian},
	}

	timings := make([]StageTiming, 0, len(stages))
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			span.AddEvent("cancelled", trace.WithAttributes(attribute.String("before_stage", s.name)))
			return nil, err
		}

		stageStart := time.Now()
		stageCtx, stageSpan := pipelineTracer.Start(ctx, "stage."+s.name)
		s.run(stageCtx, st)
		stageSpan.End()

		elapsed := time.Since(stageStart)
		timings = append(timings, StageTiming{Stage: s.name, Duration: elapsed})
		p.log.Debug("stage completed",
			slog.String("stage", s.name),
			slog.Duration("elapsed", elapsed),
		)
		if p.metrics != nil {
			p.metrics.StageDuration.Record(ctx, elapsed.Seconds(),
				otelmetric.WithAttributes(attribute.String("stage", s.name)))
		}
	}

	if p.metrics != nil {
		p.metrics.RunsTotal.Add(ctx, 1)
		p.metrics.RunDuration.Record(ctx, time.Since(started).Seconds())
		p.metrics.FilesAnalyzed.Add(ctx, int64(len(snap.Files)))
		p.metrics.PhantomEdgesTotal.Add(ctx, int64(st.g.TotalPhantoms()))
		if st.approximate {
			p.metrics.ConvergenceFailuresTotal.Add(ctx, 1)
		}
	}

	deltaH := make(map[string]float64, len(st.field.Files))
	for path, fs := range st.field.Files {
		if v, ok := fs.Get(signals.DeltaH); ok {
			deltaH[path] = v
		}
	}

	p.log.Info("pipeline completed",
		slog.String("run_id", runID),
		slog.Duration("elapsed", time.Since(started)),
		slog.Bool("approximate", st.approximate),
	)

	return &Result{
		Field:       st.field,
		Communities: st.communities,
		DeltaH:      deltaH,
		Provenance: Provenance{
			RunID:       runID,
			Tier:        st.tier,
			Approximate: st.approximate,
			StartedAt:   started,
			Stages:      timings,
		},
	}, nil
}
