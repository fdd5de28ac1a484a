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
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/namanag97/shannon-insight-sub002/services/insight/analysis"
	"github.com/namanag97/shannon-insight-sub002/services/insight/graph"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
	"github.com/namanag97/shannon-insight-sub002/services/insight/temporal"
)

// =============================================================================
// Stage 1: Collect
// =============================================================================

// stageCollect builds the import graph, fans out the graph analytics and
// churn analysis, then fills the file, directory, module, and global tiers
// with everything measurable before fusion.
func (p *Pipeline) stageCollect(ctx context.Context, st *runState) {
	st.g = buildGraph(st.snap)

	st.records = make(map[string]*snapshot.FileRecord, len(st.snap.Files))
	for i := range st.snap.Files {
		st.records[st.snap.Files[i].Path] = &st.snap.Files[i]
	}

	var (
		pagerank    *graph.PageRankResult
		betweenness map[string]float64
		sccs        *graph.SCCResult
		spectral    *graph.SpectralResult
		depths      map[string]int
		blastSizes  map[string]int
	)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(p.cfg.EffectiveWorkers())

	grp.Go(func() error {
		pagerank = st.g.PageRank(grpCtx, nil)
		return nil
	})
	grp.Go(func() error {
		betweenness = st.g.Betweenness(grpCtx)
		return nil
	})
	grp.Go(func() error {
		sccs = st.g.StronglyConnectedComponents()
		return nil
	})
	grp.Go(func() error {
		st.communities = st.g.DetectCommunities(grpCtx, nil)
		return nil
	})
	grp.Go(func() error {
		spectral = st.g.SpectralAnalysis(grpCtx)
		return nil
	})
	grp.Go(func() error {
		depths = st.g.DepthFromEntryPoints(entryPoints(st.snap))
		return nil
	})
	grp.Go(func() error {
		sizes := make(map[string]int, st.g.NodeCount())
		for _, id := range st.g.Nodes() {
			sizes[id] = len(st.g.BlastRadius(id))
		}
		blastSizes = sizes
		return nil
	})
	grp.Go(func() error {
		st.churn = temporal.Analyze(grpCtx, st.snap.Commits)
		return nil
	})
	// Stage workers never fail; the group exists for bounded fan-out.
	_ = grp.Wait()

	if !pagerank.Converged || spectral.Approximate {
		st.approximate = true
	}

	for i := range st.snap.Files {
		rec := &st.snap.Files[i]
		fs := st.field.Files[rec.Path]
		p.collectFile(fs, rec, st, pagerank, betweenness, depths, blastSizes)
	}

	p.collectDirs(st)

	st.arch = analyzeArchitecture(st)
	p.collectModules(st)

	p.collectGlobal(st, sccs, spectral, pagerank)
}

// buildGraph declares every file, then replays the edge list. Edges with
// undeclared targets become phantom counts inside the graph.
func buildGraph(snap *snapshot.Snapshot) *graph.Graph {
	g := graph.New()
	for i := range snap.Files {
		g.AddNode(snap.Files[i].Path)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.From, e.To, e.Weight)
	}
	return g
}

// entryPoints merges declared entry points with entry-point-role files.
func entryPoints(snap *snapshot.Snapshot) []string {
	seen := make(map[string]struct{}, len(snap.EntryPoints))
	out := append([]string(nil), snap.EntryPoints...)
	for _, e := range snap.EntryPoints {
		seen[e] = struct{}{}
	}
	for i := range snap.Files {
		f := &snap.Files[i]
		if f.Role == snapshot.RoleEntryPoint {
			if _, dup := seen[f.Path]; !dup {
				out = append(out, f.Path)
			}
		}
	}
	return out
}

// collectFile fills one file's structural, semantic, graph, and temporal
// signals.
func (p *Pipeline) collectFile(
	fs *signals.FileSignals,
	rec *snapshot.FileRecord,
	st *runState,
	pagerank *graph.PageRankResult,
	betweenness map[string]float64,
	depths map[string]int,
	blastSizes map[string]int,
) {
	path := rec.Path

	// Hierarchy.
	fs.Module = rec.ModuleOf()
	fs.ParentDir = parentDir(path)
	fs.DirDepth = strings.Count(path, "/")
	fs.Role = rec.Role
	if fs.Role == "" {
		fs.Role = snapshot.RoleUnknown
	}

	// Structural.
	fs.Set(signals.Lines, float64(rec.Lines))
	fs.Set(signals.FunctionCount, float64(rec.FunctionCount))
	fs.Set(signals.ClassCount, float64(rec.ClassCount))
	fs.Set(signals.MaxNesting, float64(rec.MaxNesting))
	fs.Set(signals.ImplGini, implGini(rec))
	fs.Set(signals.StubRatio, rec.StubRatio)
	fs.Set(signals.ImportCount, float64(rec.ImportCount))
	fs.Set(signals.BrokenCallCount, float64(rec.BrokenCallCount))

	// Semantic.
	fs.Set(signals.ConceptCount, float64(rec.ConceptCount))
	fs.Set(signals.ConceptEntropy, rec.ConceptEntropy)
	fs.Set(signals.NamingDrift, rec.NamingDrift)
	fs.Set(signals.TodoDensity, rec.TodoDensity)
	fs.Set(signals.DocstringCoverage, rec.DocstringCoverage)
	fs.Set(signals.CompressionRatio, rec.CompressionRatio)
	fs.Set(signals.SemanticCoherence, 1.0/(1.0+rec.ConceptEntropy))
	fs.Set(signals.CognitiveLoad, cognitiveLoad(rec))

	// Graph.
	fs.Set(signals.PageRank, pagerank.Scores[path])
	fs.Set(signals.Betweenness, betweenness[path])
	fs.Set(signals.InDegree, float64(st.g.InDegree(path)))
	fs.Set(signals.OutDegree, float64(st.g.OutDegree(path)))
	fs.Set(signals.BlastRadiusSize, float64(blastSizes[path]))
	fs.Set(signals.Depth, float64(depths[path]))
	fs.Set(signals.PhantomImportCount, float64(st.g.PhantomCount(path)))

	if st.communities != nil {
		fs.Community = st.communities.Assignments[path]
		fs.Set(signals.Community, float64(fs.Community))
	}

	// A file with no graph presence at all is an orphan, unless its role
	// explains the isolation.
	orphan := st.g.InDegree(path) == 0 && st.g.OutDegree(path) == 0 &&
		!fs.Role.ExemptFromOrphanCheck()
	fs.IsOrphan = orphan
	fs.Set(signals.IsOrphan, boolToFloat(orphan))

	// Temporal. Files without history have zero changes and a dormant
	// trajectory; dispersion signals stay absent.
	if churn := st.churn[path]; churn != nil {
		fs.Trajectory = churn.Trajectory
		fs.Set(signals.TotalChanges, float64(churn.TotalChanges))
		fs.Set(signals.ChurnSlope, churn.Slope)
		if churn.CVDefined {
			fs.Set(signals.ChurnCV, churn.CV)
		}
		fs.Set(signals.BusFactor, churn.BusFactor)
		fs.Set(signals.AuthorEntropy, churn.AuthorEntropy)
		fs.Set(signals.FixRatio, churn.FixRatio)
		fs.Set(signals.RefactorRatio, churn.RefactorRatio)
		fs.Set(signals.ChangeEntropy, churn.ChangeEntropy)
	} else {
		fs.Trajectory = temporal.TrajectoryDormant
		fs.Set(signals.TotalChanges, 0)
	}
}

// implGini prefers the per-function size list when the collector sent
// one, falling back to the precomputed value.
func implGini(rec *snapshot.FileRecord) float64 {
	if len(rec.FunctionSizes) > 0 {
		return analysis.Gini(rec.FunctionSizes, false)
	}
	return rec.ImplGini
}

// cognitiveLoad estimates how hard a file is to hold in your head:
// log2(lines+1) scaled up by complexity, nesting, and implementation
// imbalance.
func cognitiveLoad(rec *snapshot.FileRecord) float64 {
	return math.Log2(float64(rec.Lines)+1) *
		(1 + rec.Complexity/10) *
		(1 + float64(rec.MaxNesting)/5) *
		(1 + implGini(rec))
}

// collectDirs aggregates per-directory rollups.
func (p *Pipeline) collectDirs(st *runState) {
	hotspotCutoff := hotspotMedian(st)

	byDir := make(map[string][]*signals.FileSignals)
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		byDir[fs.ParentDir] = append(byDir[fs.ParentDir], fs)
	}

	for dir, files := range byDir {
		ds := st.field.Dir(dir)

		var lines, cogLoads, changes []float64
		roles := make(map[snapshot.Role]int)
		trajectories := make(map[temporal.Trajectory]int)
		hotspots := 0

		for _, fs := range files {
			ds.Files = append(ds.Files, fs.Path)
			lines = append(lines, fs.MustGet(signals.Lines))
			cogLoads = append(cogLoads, fs.MustGet(signals.CognitiveLoad))
			total := fs.MustGet(signals.TotalChanges)
			changes = append(changes, total)
			roles[fs.Role]++
			trajectories[fs.Trajectory]++
			if total > hotspotCutoff && total > 0 {
				hotspots++
			}
		}

		ds.Set(signals.FileCount, float64(len(files)))
		ds.Set(signals.Lines, sum(lines))
		ds.Set(signals.MeanCognitiveLoad, analysis.Mean(cogLoads))
		ds.Set(signals.TotalChanges, sum(changes))
		ds.Set(signals.HotspotCount, float64(hotspots))
		ds.DominantRole = dominantRole(roles)
		ds.DominantTrajectory = dominantTrajectory(trajectories)
	}
}

// hotspotMedian is the lower median of change counts over non-test files
// that changed at all. Directories count files above it as hotspots.
func hotspotMedian(st *runState) float64 {
	var changed []float64
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		if fs.Role == snapshot.RoleTest {
			continue
		}
		if total := fs.MustGet(signals.TotalChanges); total > 0 {
			changed = append(changed, total)
		}
	}
	return analysis.LowerMedian(changed)
}

// collectModules fills the per-module tier: Martin metrics, boundary and
// role structure, and the architecture layer results.
func (p *Pipeline) collectModules(st *runState) {
	byModule := make(map[string][]*signals.FileSignals)
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		byModule[fs.Module] = append(byModule[fs.Module], fs)
	}

	for name, files := range byModule {
		ms := st.field.Module(name)
		for _, fs := range files {
			ms.Files = append(ms.Files, fs.Path)
		}

		p.collectModuleStructure(st, ms, files)

		if st.arch != nil {
			ms.Layer = st.arch.layers[name]
			ms.Set(signals.LayerViolationCount, float64(st.arch.violationsBySource[name]))
		}
	}
}

// collectModuleStructure computes cohesion, coupling, instability,
// abstractness, main-sequence distance, boundary alignment, and role
// consistency for one module.
func (p *Pipeline) collectModuleStructure(st *runState, ms *signals.ModuleSignals, files []*signals.FileSignals) {
	n := len(files)
	member := make(map[string]struct{}, n)
	for _, fs := range files {
		member[fs.Path] = struct{}{}
	}

	var internal, external, afferent, efferent int
	for _, fs := range files {
		for _, target := range st.g.Neighbors(fs.Path, graph.Outgoing) {
			if _, in := member[target]; in {
				internal++
			} else {
				external++
				efferent++
			}
		}
		for _, source := range st.g.Neighbors(fs.Path, graph.Incoming) {
			if _, in := member[source]; !in {
				external++
				afferent++
			}
		}
	}

	// Cohesion: realized fraction of possible internal edges. A single
	// file is trivially cohesive.
	if n > 1 {
		ms.Set(signals.Cohesion, float64(internal)/float64(n*(n-1)))
	} else {
		ms.Set(signals.Cohesion, 1.0)
	}

	if total := internal + external; total > 0 {
		ms.Set(signals.Coupling, float64(external)/float64(total))
	} else {
		ms.Set(signals.Coupling, 0)
	}

	// Martin metrics. Instability is undefined for an isolated module,
	// and the main-sequence distance needs both I and A.
	instabilityDefined := afferent+efferent > 0
	if instabilityDefined {
		ms.Set(signals.Instability, float64(efferent)/float64(afferent+efferent))
	}

	var classes, abstract int
	for _, fs := range files {
		if rec := st.records[fs.Path]; rec != nil {
			classes += rec.ClassCount
			abstract += rec.AbstractClassCount
		}
	}
	abstractnessDefined := classes > 0
	if abstractnessDefined {
		ms.Set(signals.Abstractness, float64(abstract)/float64(classes))
	}

	if instabilityDefined && abstractnessDefined {
		instability := ms.MustGet(signals.Instability)
		abstractness := ms.MustGet(signals.Abstractness)
		ms.Set(signals.MainSeqDistance, math.Abs(abstractness+instability-1))
	}

	// Boundary alignment: share of files in the module's dominant
	// community.
	if st.communities != nil && n > 0 {
		counts := make(map[int]int)
		for _, fs := range files {
			counts[fs.Community]++
		}
		best := 0
		for _, c := range counts {
			if c > best {
				best = c
			}
		}
		ms.Set(signals.BoundaryAlignment, float64(best)/float64(n))
	}

	// Role consistency: share of files with the dominant role.
	roles := make(map[snapshot.Role]int)
	for _, fs := range files {
		roles[fs.Role]++
	}
	best := 0
	for _, c := range roles {
		if c > best {
			best = c
		}
	}
	if n > 0 {
		ms.Set(signals.RoleConsistency, float64(best)/float64(n))
	}

	var cogLoads []float64
	for _, fs := range files {
		cogLoads = append(cogLoads, fs.MustGet(signals.CognitiveLoad))
	}
	ms.Set(signals.MeanCognitiveLoad, analysis.Mean(cogLoads))
	ms.Set(signals.FileCount, float64(n))
}

// collectGlobal fills the codebase-wide tier.
func (p *Pipeline) collectGlobal(st *runState, sccs *graph.SCCResult, spectral *graph.SpectralResult, pagerank *graph.PageRankResult) {
	g := st.field.Global
	total := len(st.field.Files)

	if st.communities != nil {
		g.Set(signals.Modularity, st.communities.Modularity)
	}
	g.Set(signals.FiedlerValue, spectral.FiedlerValue)
	g.Set(signals.SpectralGap, spectral.SpectralGap)
	g.Set(signals.CycleCount, float64(sccs.CycleCount))

	ranks := make([]float64, 0, total)
	for _, score := range pagerank.Scores {
		ranks = append(ranks, score)
	}
	g.Set(signals.CentralityGini, analysis.Gini(ranks, false))

	orphans, phantomFiles := 0, 0
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]
		if fs.IsOrphan {
			orphans++
		}
		if fs.MustGet(signals.PhantomImportCount) > 0 {
			phantomFiles++
		}
	}
	if total > 0 {
		g.Set(signals.OrphanRatio, float64(orphans)/float64(total))
		g.Set(signals.PhantomRatio, float64(phantomFiles)/float64(total))
	}

	g.Set(signals.GlueDeficit, glueDeficit(st))

	if st.arch != nil {
		g.Set(signals.ViolationRate, st.arch.violationRate)
	}

	g.Set(signals.TeamSize, float64(teamSize(st.snap)))
}

// glueDeficit asks whether enough files bridge modules: glue files exceed
// both the betweenness and out-degree medians, and a healthy codebase has
// about sqrt(module count) of them.
func glueDeficit(st *runState) float64 {
	paths := st.field.FilePaths()
	if len(paths) == 0 {
		return 0
	}

	var betweennessVals, outDegreeVals []float64
	for _, path := range paths {
		fs := st.field.Files[path]
		betweennessVals = append(betweennessVals, fs.MustGet(signals.Betweenness))
		outDegreeVals = append(outDegreeVals, fs.MustGet(signals.OutDegree))
	}
	medianBetweenness := upperMedian(betweennessVals)
	medianOutDegree := upperMedian(outDegreeVals)

	glue := 0
	for _, path := range paths {
		fs := st.field.Files[path]
		if fs.MustGet(signals.Betweenness) > medianBetweenness &&
			fs.MustGet(signals.OutDegree) > medianOutDegree {
			glue++
		}
	}

	modules := len(st.field.Modules)
	if modules == 0 {
		modules = 1
	}
	expected := math.Sqrt(float64(modules))

	deficit := 1.0 - float64(glue)/math.Max(expected, 1.0)
	return clamp01(deficit)
}

// teamSize prefers the declared team size, falling back to distinct
// commit authors, never below 1.
func teamSize(snap *snapshot.Snapshot) int {
	if snap.TeamSize > 0 {
		return snap.TeamSize
	}
	authors := make(map[string]struct{})
	for i := range snap.Commits {
		authors[snap.Commits[i].Author] = struct{}{}
	}
	if len(authors) == 0 {
		return 1
	}
	return len(authors)
}

// =============================================================================
// Small helpers
// =============================================================================

func parentDir(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return "."
}

func dominantRole(counts map[snapshot.Role]int) snapshot.Role {
	best, bestCount := snapshot.RoleUnknown, 0
	for role, c := range counts {
		if c > bestCount || (c == bestCount && role < best) {
			best, bestCount = role, c
		}
	}
	return best
}

func dominantTrajectory(counts map[temporal.Trajectory]int) temporal.Trajectory {
	best, bestCount := temporal.TrajectoryDormant, 0
	for tr, c := range counts {
		if c > bestCount || (c == bestCount && tr < best) {
			best, bestCount = tr, c
		}
	}
	return best
}

// upperMedian matches sorted[len/2], the cutoff glue detection uses.
func upperMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
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
