// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namanag97/shannon-insight-sub002/services/insight/pipeline"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
)

func TestDisplayScore(t *testing.T) {
	tests := []struct {
		internal float64
		want     float64
	}{
		{internal: 0.0, want: 1.0},
		{internal: 1.0, want: 10.0},
		{internal: 0.5, want: 5.5},
		{internal: 0.777, want: 8.0},
		{internal: 0.12, want: 2.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, DisplayScore(tt.internal), 1e-9, "internal %v", tt.internal)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		display float64
		want    Band
	}{
		{display: 10.0, want: BandHealthy},
		{display: 7.78, want: BandHealthy},
		{display: 7.77, want: BandModerate},
		{display: 5.56, want: BandModerate},
		{display: 5.55, want: BandAtRisk},
		{display: 3.33, want: BandAtRisk},
		{display: 3.32, want: BandCritical},
		{display: 1.0, want: BandCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.display), "display %v", tt.display)
	}
}

func buildResult(t *testing.T, n int) *pipeline.Result {
	t.Helper()

	p, err := pipeline.New(nil)
	require.NoError(t, err)

	snap := &snapshot.Snapshot{}
	base := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("svc/f%02d.go", i)
		snap.Files = append(snap.Files, snapshot.FileRecord{
			Path: path, Role: snapshot.RoleCore,
			Lines: 150 + 10*i, FunctionCount: 5, ImportCount: 2,
		})
		if i > 0 {
			snap.Edges = append(snap.Edges, snapshot.Edge{
				From: fmt.Sprintf("svc/f%02d.go", i-1), To: path,
			})
		}
		snap.Commits = append(snap.Commits, snapshot.Commit{
			Author: "carol", Subject: "work", Timestamp: base.AddDate(0, 0, i),
			Files: []string{path},
		})
	}

	res, err := p.Run(context.Background(), snap)
	require.NoError(t, err)
	return res
}

func TestBuild_OrdersFilesRiskiestFirst(t *testing.T) {
	res := buildResult(t, 20)
	rpt := Build(res)

	require.Len(t, rpt.Files, 20)
	for i := 1; i < len(rpt.Files); i++ {
		assert.GreaterOrEqual(t,
			sortRisk(&rpt.Files[i-1]), sortRisk(&rpt.Files[i]),
			"files must be ordered riskiest first")
	}
	assert.Equal(t, "bayesian", rpt.Tier)
	assert.NotNil(t, rpt.Summary.CodebaseHealth)
	require.NotNil(t, rpt.Communities)
	assert.Len(t, rpt.Communities.Members, 20)
	assert.Len(t, rpt.Stages, 6)
}

func TestBuild_ExportsPercentileRanks(t *testing.T) {
	rpt := Build(buildResult(t, 20))

	for _, f := range rpt.Files {
		require.NotEmpty(t, f.Percentiles, "file %s", f.Path)
		rank, ok := f.Percentiles[signals.Lines]
		require.True(t, ok, "file %s", f.Path)
		assert.GreaterOrEqual(t, rank, 0.0)
		assert.LessOrEqual(t, rank, 1.0)
	}
}

func TestBuild_ExportsDirectories(t *testing.T) {
	rpt := Build(buildResult(t, 20))

	require.Len(t, rpt.Directories, 1)
	dir := rpt.Directories[0]
	assert.Equal(t, "svc", dir.Path)
	assert.Equal(t, 20, dir.FileCount)
	assert.Equal(t, string(snapshot.RoleCore), dir.DominantRole)
	assert.Contains(t, dir.Signals, signals.TotalChanges)
}

func TestBuild_AbsoluteTierOmitsPercentileScores(t *testing.T) {
	res := buildResult(t, 4)
	rpt := Build(res)

	assert.Equal(t, "absolute", rpt.Tier)
	for _, f := range rpt.Files {
		assert.Nil(t, f.RiskScore)
		assert.Nil(t, f.Health)
		assert.Empty(t, f.Percentiles)
	}
	// Population-free composites still present.
	assert.NotNil(t, rpt.Summary.WiringScore)
}

func TestReport_WriteRoundTrips(t *testing.T) {
	rpt := Build(buildResult(t, 5))

	var buf bytes.Buffer
	require.NoError(t, rpt.Write(&buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rpt.RunID, decoded.RunID)
	assert.Len(t, decoded.Files, 5)
}
