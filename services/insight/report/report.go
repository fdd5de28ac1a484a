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
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/namanag97/shannon-insight-sub002/services/insight/pipeline"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// Score pairs an internal [0,1] value with its display form.
type Score struct {
	Value   float64 `json:"value"`
	Display float64 `json:"display"`
	Band    Band    `json:"band"`
}

func newScore(v float64) *Score {
	display := DisplayScore(v)
	return &Score{Value: v, Display: display, Band: BandFor(display)}
}

// FileReport is one file's scored view.
type FileReport struct {
	Path       string `json:"path"`
	Module     string `json:"module"`
	Role       string `json:"role"`
	Trajectory string `json:"trajectory"`

	RawRisk float64 `json:"raw_risk"`
	DeltaH  float64 `json:"delta_h"`

	// RiskScore and Health are absent in absolute-tier runs.
	RiskScore *Score `json:"risk_score,omitempty"`
	Health    *Score `json:"health,omitempty"`

	WiringQuality float64 `json:"wiring_quality"`
	IsOrphan      bool    `json:"is_orphan,omitempty"`

	Signals map[signals.Signal]float64 `json:"signals,omitempty"`

	// Percentiles carries the frequentist rank of each comparable signal.
	// Absent in absolute-tier runs, where too few files exist to rank.
	Percentiles map[signals.Signal]float64 `json:"percentiles,omitempty"`
}

// DirReport is one directory's aggregate view.
type DirReport struct {
	Path               string `json:"path"`
	FileCount          int    `json:"file_count"`
	DominantRole       string `json:"dominant_role,omitempty"`
	DominantTrajectory string `json:"dominant_trajectory,omitempty"`

	Signals map[signals.Signal]float64 `json:"signals,omitempty"`
}

// ModuleReport is one module's scored view.
type ModuleReport struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
	Layer     int    `json:"layer"`

	Health  *Score                     `json:"health,omitempty"`
	Signals map[signals.Signal]float64 `json:"signals,omitempty"`
}

// Summary holds the codebase-level composites.
type Summary struct {
	CodebaseHealth     *Score `json:"codebase_health,omitempty"`
	ArchitectureHealth *Score `json:"architecture_health,omitempty"`
	WiringScore        *Score `json:"wiring_score,omitempty"`
	TeamRisk           *Score `json:"team_risk,omitempty"`

	Signals map[signals.Signal]float64 `json:"signals,omitempty"`
}

// Communities summarizes the graph partition.
type Communities struct {
	Count      int            `json:"count"`
	Modularity float64        `json:"modularity"`
	Members    map[string]int `json:"members,omitempty"`
}

// StageTiming is one stage's wall time in milliseconds.
type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMS float64 `json:"duration_ms"`
}

// Report is the complete JSON document of one engine run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	RunID       string    `json:"run_id"`
	Tier        string    `json:"tier"`
	Approximate bool      `json:"approximate"`

	Summary     Summary        `json:"summary"`
	Files       []FileReport   `json:"files"`
	Directories []DirReport    `json:"directories,omitempty"`
	Modules     []ModuleReport `json:"modules"`
	Communities *Communities   `json:"communities,omitempty"`
	Stages      []StageTiming  `json:"stages,omitempty"`
}

// Build assembles the report from an engine result. Files are ordered
// riskiest first; in absolute-tier runs raw risk decides the order.
func Build(res *pipeline.Result) *Report {
	rpt := &Report{
		GeneratedAt: time.Now().UTC(),
		RunID:       res.Provenance.RunID,
		Tier:        string(res.Provenance.Tier),
		Approximate: res.Provenance.Approximate,
		Summary:     buildSummary(res),
	}

	for _, path := range res.Field.FilePaths() {
		rpt.Files = append(rpt.Files, buildFile(res, res.Field.Files[path]))
	}
	sort.SliceStable(rpt.Files, func(i, j int) bool {
		ri, rj := sortRisk(&rpt.Files[i]), sortRisk(&rpt.Files[j])
		if ri != rj {
			return ri > rj
		}
		return rpt.Files[i].Path < rpt.Files[j].Path
	})

	for _, path := range res.Field.DirPaths() {
		rpt.Directories = append(rpt.Directories, buildDir(res.Field.Dirs[path]))
	}

	for _, name := range res.Field.ModuleNames() {
		rpt.Modules = append(rpt.Modules, buildModule(res.Field.Modules[name]))
	}

	if res.Communities != nil {
		rpt.Communities = &Communities{
			Count:      res.Communities.Count,
			Modularity: res.Communities.Modularity,
			Members:    res.Communities.Assignments,
		}
	}
	for _, st := range res.Provenance.Stages {
		rpt.Stages = append(rpt.Stages, StageTiming{
			Stage:      st.Stage,
			DurationMS: float64(st.Duration.Microseconds()) / 1000,
		})
	}
	return rpt
}

// Write renders the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func sortRisk(f *FileReport) float64 {
	if f.RiskScore != nil {
		return f.RiskScore.Value
	}
	return f.RawRisk
}

func buildFile(res *pipeline.Result, fs *signals.FileSignals) FileReport {
	fr := FileReport{
		Path:          fs.Path,
		Module:        fs.Module,
		Role:          string(fs.Role),
		Trajectory:    string(fs.Trajectory),
		RawRisk:       fs.MustGet(signals.RawRisk),
		DeltaH:        res.DeltaH[fs.Path],
		WiringQuality: fs.MustGet(signals.WiringQuality),
		IsOrphan:      fs.IsOrphan,
		Signals:       fs.Numbers(),
	}
	if pcts := fs.Percentiles(); len(pcts) > 0 {
		fr.Percentiles = pcts
	}
	if v, ok := fs.Get(signals.RiskScore); ok {
		fr.RiskScore = newScore(v)
	}
	if v, ok := fs.Get(signals.FileHealthScore); ok {
		fr.Health = newScore(v)
	}
	return fr
}

func buildDir(ds *signals.DirSignals) DirReport {
	return DirReport{
		Path:               ds.Path,
		FileCount:          len(ds.Files),
		DominantRole:       string(ds.DominantRole),
		DominantTrajectory: string(ds.DominantTrajectory),
		Signals:            ds.Numbers(),
	}
}

func buildModule(ms *signals.ModuleSignals) ModuleReport {
	mr := ModuleReport{
		Name:      ms.Name,
		FileCount: len(ms.Files),
		Layer:     ms.Layer,
		Signals:   ms.Numbers(),
	}
	if v, ok := ms.Get(signals.HealthScore); ok {
		mr.Health = newScore(v)
	}
	return mr
}

func buildSummary(res *pipeline.Result) Summary {
	g := res.Field.Global
	s := Summary{Signals: g.Numbers()}

	if v, ok := g.Get(signals.CodebaseHealth); ok {
		s.CodebaseHealth = newScore(v)
	}
	if v, ok := g.Get(signals.ArchitectureHealth); ok {
		s.ArchitectureHealth = newScore(v)
	}
	if v, ok := g.Get(signals.WiringScore); ok {
		s.WiringScore = newScore(v)
	}
	if v, ok := g.Get(signals.TeamRisk); ok {
		s.TeamRisk = newScore(v)
	}
	return s
}
