// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package temporal turns commit history into per-file change dynamics:
// windowed churn series, trajectory classification, authorship entropy,
// and keyword-based fix/refactor ratios. The engine never talks to git;
// commits arrive as snapshot records.
package temporal

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
)

var churnTracer = otel.Tracer("insight.temporal.churn")

// Trajectory classifies a file's change rhythm over its windowed history.
type Trajectory string

const (
	// TrajectoryDormant: at most one change, or no variation at all.
	TrajectoryDormant Trajectory = "dormant"

	// TrajectoryStable: steady, low-variance change activity.
	TrajectoryStable Trajectory = "stable"

	// TrajectoryStabilizing: activity trending down with low variance.
	TrajectoryStabilizing Trajectory = "stabilizing"

	// TrajectoryChurning: high-variance activity with no clear trend.
	TrajectoryChurning Trajectory = "churning"

	// TrajectorySpiking: high-variance activity trending up.
	TrajectorySpiking Trajectory = "spiking"
)

// Volatile reports whether the trajectory marks a file as actively
// unstable.
func (tr Trajectory) Volatile() bool {
	return tr == TrajectoryChurning || tr == TrajectorySpiking
}

// Window and classification constants.
const (
	// WindowWeeks is the width of one churn window.
	WindowWeeks = 4

	// slopeThreshold separates trending from flat window series.
	slopeThreshold = 0.1

	// cvThreshold separates volatile from steady window series.
	cvThreshold = 0.5
)

// Commit subjects containing these tokens count as fixes / refactors.
var (
	fixKeywords      = []string{"fix", "bug", "patch", "hotfix", "bugfix", "repair", "issue"}
	refactorKeywords = []string{"refactor", "cleanup", "clean up", "reorganize", "restructure", "rename"}
)

// FileChurn summarizes one file's change history.
type FileChurn struct {
	TotalChanges int

	// Slope is the linear trend of changes per window.
	Slope float64

	// CV is the coefficient of variation of the window series. CVDefined
	// is false when the mean window count is zero.
	CV        float64
	CVDefined bool

	Trajectory Trajectory

	// AuthorEntropy is the Shannon entropy of per-author change counts;
	// BusFactor is 2^AuthorEntropy, the effective number of authors.
	AuthorEntropy float64
	BusFactor     float64

	FixRatio      float64
	RefactorRatio float64

	// ChangeEntropy measures how evenly changes spread across windows.
	ChangeEntropy float64

	// AuthorChanges counts changes per author.
	AuthorChanges map[string]int
}

// fileHistory accumulates the raw per-file evidence before summarization.
type fileHistory struct {
	timestamps []time.Time
	authors    map[string]int
	fixes      int
	refactors  int
}

// Analyze computes FileChurn for every file any commit touched.
//
// Description:
//
//	Windows are WindowWeeks wide, anchored at each file's first change
//	and running through its last, empty windows included. The window
//	series drives slope, variation, trajectory, and change entropy;
//	authorship drives entropy and bus factor.
//
// Outputs:
//
//   - map[string]*FileChurn keyed by file path. Files never touched by a
//     commit are absent; callers treat absence as no temporal evidence.
//
// Thread Safety: Safe for concurrent use.
func Analyze(ctx context.Context, commits []snapshot.Commit) map[string]*FileChurn {
	_, span := churnTracer.Start(ctx, "temporal.Analyze",
		trace.WithAttributes(attribute.Int("commit_count", len(commits))),
	)
	defer span.End()

	histories := make(map[string]*fileHistory)
	for i := range commits {
		c := &commits[i]
		subject := strings.ToLower(c.Subject)
		isFix := containsAny(subject, fixKeywords)
		isRefactor := containsAny(subject, refactorKeywords)

		for _, path := range c.Files {
			h := histories[path]
			if h == nil {
				h = &fileHistory{authors: make(map[string]int)}
				histories[path] = h
			}
			h.timestamps = append(h.timestamps, c.Timestamp)
			h.authors[c.Author]++
			if isFix {
				h.fixes++
			}
			if isRefactor {
				h.refactors++
			}
		}
	}

	result := make(map[string]*FileChurn, len(histories))
	for path, h := range histories {
		result[path] = summarize(h)
	}

	slog.Debug("churn analysis completed",
		slog.Int("commits", len(commits)),
		slog.Int("files", len(result)),
	)
	span.SetAttributes(attribute.Int("files", len(result)))

	return result
}

func summarize(h *fileHistory) *FileChurn {
	total := len(h.timestamps)
	windows := windowSeries(h.timestamps)

	slope := analysis.LinearSlope(windows)
	cv, cvDefined := analysis.CoefficientOfVariation(windows)

	authorCounts := make([]float64, 0, len(h.authors))
	for _, c := range h.authors {
		authorCounts = append(authorCounts, float64(c))
	}
	authorEntropy := analysis.ShannonEntropy(authorCounts)

	churn := &FileChurn{
		TotalChanges:  total,
		Slope:         slope,
		CV:            cv,
		CVDefined:     cvDefined,
		AuthorEntropy: authorEntropy,
		BusFactor:     math.Exp2(authorEntropy),
		FixRatio:      ratio(h.fixes, total),
		RefactorRatio: ratio(h.refactors, total),
		ChangeEntropy: analysis.ShannonEntropy(windows),
		AuthorChanges: h.authors,
	}
	churn.Trajectory = classify(total, slope, cv)
	return churn
}

// windowSeries buckets timestamps into WindowWeeks-wide windows from the
// earliest change through the latest, zeros for quiet windows.
func windowSeries(timestamps []time.Time) []float64 {
	if len(timestamps) == 0 {
		return nil
	}
	sorted := append([]time.Time(nil), timestamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	windowWidth := WindowWeeks * 7 * 24 * time.Hour
	first := sorted[0]
	last := sorted[len(sorted)-1]
	buckets := int(last.Sub(first)/windowWidth) + 1

	series := make([]float64, buckets)
	for _, ts := range sorted {
		series[int(ts.Sub(first)/windowWidth)]++
	}
	return series
}

func classify(total int, slope, cv float64) Trajectory {
	switch {
	case total <= 1 || cv == 0:
		return TrajectoryDormant
	case slope < -slopeThreshold && cv < cvThreshold:
		return TrajectoryStabilizing
	case slope > slopeThreshold && cv > cvThreshold:
		return TrajectorySpiking
	case cv > cvThreshold:
		return TrajectoryChurning
	default:
		return TrajectoryStable
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
