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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(nil)
	require.NoError(t, err)
	return p
}

// coreFile builds a plausible mid-size file record.
func coreFile(path string) snapshot.FileRecord {
	return snapshot.FileRecord{
		Path:          path,
		Role:          snapshot.RoleCore,
		Lines:         200,
		FunctionCount: 8,
		MaxNesting:    2,
		Complexity:    5,
		ImportCount:   3,
	}
}

// chainSnapshot builds n files in one directory wired into a chain, each
// touched by one commit.
func chainSnapshot(n int) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{}
	base := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("pkg/f%02d.go", i)
		snap.Files = append(snap.Files, coreFile(path))
		if i > 0 {
			snap.Edges = append(snap.Edges, snapshot.Edge{
				From: fmt.Sprintf("pkg/f%02d.go", i-1), To: path,
			})
		}
		snap.Commits = append(snap.Commits, snapshot.Commit{
			Author:    "alice",
			Subject:   "add feature",
			Timestamp: base.AddDate(0, 0, i),
			Files:     []string{path},
		})
	}
	return snap
}

func TestPipeline_TriangleWithIsolate(t *testing.T) {
	p := newTestPipeline(t)

	snap := &snapshot.Snapshot{
		Files: []snapshot.FileRecord{
			coreFile("a.go"), coreFile("b.go"), coreFile("c.go"), coreFile("d.go"),
		},
		Edges: []snapshot.Edge{
			{From: "a.go", To: "b.go"},
			{From: "b.go", To: "c.go"},
			{From: "c.go", To: "a.go"},
		},
	}

	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, analysis.TierAbsolute, res.Provenance.Tier)

	// The triangle is one dependency cycle.
	cycles, ok := res.Field.Global.Get(signals.CycleCount)
	require.True(t, ok)
	assert.Equal(t, 1.0, cycles)

	// The isolate disconnects the graph; algebraic connectivity is
	// exactly zero, no tolerance.
	fiedler, ok := res.Field.Global.Get(signals.FiedlerValue)
	require.True(t, ok)
	assert.Equal(t, 0.0, fiedler)

	// d.go imports nothing and nothing imports it.
	assert.True(t, res.Field.Files["d.go"].IsOrphan)
	assert.False(t, res.Field.Files["a.go"].IsOrphan)

	// No neighbors means no neighborhood to deviate from.
	assert.Equal(t, 0.0, res.DeltaH["d.go"])

	// The triangle is symmetric, so each member matches its neighborhood.
	assert.InDelta(t, 0.0, res.DeltaH["a.go"], 1e-9)

	// The isolate cannot share a community with the triangle.
	require.NotNil(t, res.Communities)
	assert.GreaterOrEqual(t, res.Communities.Count, 2)

	// Four files is far below the percentile threshold.
	_, ok = res.Field.Files["a.go"].Get(signals.RiskScore)
	assert.False(t, ok, "risk_score needs percentiles")
	_, ok = res.Field.Files["a.go"].Get(signals.RawRisk)
	assert.True(t, ok, "raw_risk never needs percentiles")
}

func TestPipeline_TierBoundary(t *testing.T) {
	p := newTestPipeline(t)

	tests := []struct {
		files    int
		wantTier analysis.Tier
		wantPcts bool
	}{
		{files: 14, wantTier: analysis.TierAbsolute, wantPcts: false},
		{files: 15, wantTier: analysis.TierBayesian, wantPcts: true},
		{files: 50, wantTier: analysis.TierFull, wantPcts: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_files", tt.files), func(t *testing.T) {
			res, err := p.Run(context.Background(), chainSnapshot(tt.files))
			require.NoError(t, err)

			assert.Equal(t, tt.wantTier, res.Provenance.Tier)

			fs := res.Field.Files["pkg/f01.go"]
			_, ok := fs.Percentile(signals.Lines)
			assert.Equal(t, tt.wantPcts, ok)
			_, ok = fs.Get(signals.RiskScore)
			assert.Equal(t, tt.wantPcts, ok)
		})
	}
}

func TestPipeline_UntouchedFileHasZeroRisk(t *testing.T) {
	p := newTestPipeline(t)

	snap := chainSnapshot(20)
	// Replace the last commit so f19 has no history at all.
	snap.Commits = snap.Commits[:19]

	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)

	risk, ok := res.Field.Files["pkg/f19.go"].Get(signals.RiskScore)
	require.True(t, ok)
	assert.Equal(t, 0.0, risk, "a never-changed file cannot be a change-risk hotspot")

	// Touched files keep their blended score.
	risk, ok = res.Field.Files["pkg/f10.go"].Get(signals.RiskScore)
	require.True(t, ok)
	assert.Greater(t, risk, 0.0)
}

func TestPipeline_Deterministic(t *testing.T) {
	p := newTestPipeline(t)
	snap1 := chainSnapshot(30)
	snap2 := chainSnapshot(30)

	res1, err := p.Run(context.Background(), snap1)
	require.NoError(t, err)
	res2, err := p.Run(context.Background(), snap2)
	require.NoError(t, err)

	assert.Equal(t, res1.DeltaH, res2.DeltaH)
	for path, fs := range res1.Field.Files {
		assert.Equal(t, fs.Numbers(), res2.Field.Files[path].Numbers(), path)
		assert.Equal(t, fs.Percentiles(), res2.Field.Files[path].Percentiles(), path)
	}
	assert.Equal(t, res1.Field.Global.Numbers(), res2.Field.Global.Numbers())
}

func TestPipeline_SingleFile(t *testing.T) {
	p := newTestPipeline(t)

	snap := &snapshot.Snapshot{Files: []snapshot.FileRecord{coreFile("main.go")}}
	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)

	fs := res.Field.Files["main.go"]
	assert.True(t, fs.IsOrphan)
	assert.Equal(t, 0.0, res.DeltaH["main.go"])

	// A single trivially-cohesive module.
	ms, ok := res.Field.Modules["pkg"]
	if !ok {
		ms = res.Field.Modules["."]
	}
	require.NotNil(t, ms)
	assert.Equal(t, 1.0, ms.MustGet(signals.Cohesion))

	_, ok = res.Field.Global.Get(signals.CodebaseHealth)
	assert.True(t, ok)
}

func TestPipeline_SingleAuthorConcentratesRisk(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), chainSnapshot(100))
	require.NoError(t, err)

	assert.Equal(t, analysis.TierFull, res.Provenance.Tier)

	// One author means no author entropy anywhere.
	bf, ok := res.Field.Files["pkg/f50.go"].Get(signals.BusFactor)
	require.True(t, ok)
	assert.Equal(t, 1.0, bf)

	teamRisk, ok := res.Field.Global.Get(signals.TeamRisk)
	require.True(t, ok)
	assert.Greater(t, teamRisk, 0.0)

	teamSize, ok := res.Field.Global.Get(signals.TeamSize)
	require.True(t, ok)
	assert.Equal(t, 1.0, teamSize)
}

func TestPipeline_PreflightIsTheOnlyFatalPath(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, snapshot.ErrNilSnapshot)

	_, err = p.Run(context.Background(), &snapshot.Snapshot{})
	assert.ErrorIs(t, err, snapshot.ErrNoFiles)

	// Phantom edges degrade, never fail.
	snap := &snapshot.Snapshot{
		Files: []snapshot.FileRecord{coreFile("a.go")},
		Edges: []snapshot.Edge{{From: "a.go", To: "missing.go"}},
	}
	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Field.Files["a.go"].MustGet(signals.PhantomImportCount))
	orphanRatio, ok := res.Field.Global.Get(signals.PhantomRatio)
	require.True(t, ok)
	assert.Equal(t, 1.0, orphanRatio)
}

func TestPipeline_CancelledBetweenStages(t *testing.T) {
	p := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, chainSnapshot(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_InvalidConfigRejected(t *testing.T) {
	cfg := newTestPipeline(t).cfg
	bad := *cfg
	bad.Weights.RawRisk.PageRank = 0.9

	_, err := New(&bad)
	assert.Error(t, err)
}

func TestPipeline_DeltaHIsAsymmetric(t *testing.T) {
	p := newTestPipeline(t)

	// b is hooked into a busy neighborhood, a only into b, so their
	// neighborhood means differ.
	heavy := coreFile("a.go")
	heavy.Lines = 2000
	heavy.Complexity = 40
	heavy.MaxNesting = 6
	snap := &snapshot.Snapshot{
		Files: []snapshot.FileRecord{
			heavy, coreFile("b.go"), coreFile("c.go"), coreFile("d.go"),
		},
		Edges: []snapshot.Edge{
			{From: "a.go", To: "b.go"},
			{From: "c.go", To: "b.go"},
			{From: "d.go", To: "b.go"},
		},
	}

	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.NotEqual(t, res.DeltaH["a.go"], res.DeltaH["b.go"])
}

func TestPipeline_FunctionSizeListDrivesImplGini(t *testing.T) {
	p := newTestPipeline(t)

	skewed := coreFile("a.go")
	skewed.FunctionSizes = []float64{1, 1, 1, 200}
	even := coreFile("b.go")
	even.FunctionSizes = []float64{50, 50, 50, 50}

	snap := &snapshot.Snapshot{Files: []snapshot.FileRecord{skewed, even}}
	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)

	giniSkewed := res.Field.Files["a.go"].MustGet(signals.ImplGini)
	giniEven := res.Field.Files["b.go"].MustGet(signals.ImplGini)
	assert.Greater(t, giniSkewed, 0.7)
	assert.Equal(t, 0.0, giniEven)
}

func TestPipeline_ProvenanceStages(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), chainSnapshot(3))
	require.NoError(t, err)

	var names []string
	for _, st := range res.Provenance.Stages {
		names = append(names, st.Stage)
	}
	assert.Equal(t, []string{
		"collect", "raw_risk", "normalize", "module_temporal",
		"composites", "health_laplacian",
	}, names)
	assert.NotEmpty(t, res.Provenance.RunID)
}
