// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package signals

import (
	"log/slog"
	"sort"

	"github.com/namanag97/shannon-insight-sub002/services/insight/snapshot"
	"github.com/namanag97/shannon-insight-sub002/services/insight/temporal"
)

// =============================================================================
// SignalField: the pipeline's accumulating state
// =============================================================================

// values is a numeric signal store with first-write-wins semantics.
// A second write to the same signal is a stage-ownership bug; the first
// value is kept and the attempt logged.
type values map[Signal]float64

func (v values) set(owner string, sig Signal, val float64) {
	if _, exists := v[sig]; exists {
		slog.Warn("signal written twice, keeping first value",
			slog.String("owner", owner),
			slog.String("signal", string(sig)),
		)
		return
	}
	v[sig] = val
}

// FileSignals holds everything measured and derived for one file.
type FileSignals struct {
	Path      string
	Module    string
	ParentDir string
	DirDepth  int

	Role       snapshot.Role
	Trajectory temporal.Trajectory

	// Community is the Louvain community index, -1 before assignment.
	Community int

	IsOrphan bool

	nums values
	pcts map[Signal]float64
}

// NewFileSignals initializes an empty per-file record.
func NewFileSignals(path string) *FileSignals {
	return &FileSignals{
		Path:      path,
		Community: -1,
		nums:      make(values),
		pcts:      make(map[Signal]float64),
	}
}

// Set records a numeric signal value. First write wins.
func (f *FileSignals) Set(sig Signal, v float64) { f.nums.set(f.Path, sig, v) }

// Get returns a numeric signal value; ok is false when it was never
// computed.
func (f *FileSignals) Get(sig Signal) (float64, bool) {
	v, ok := f.nums[sig]
	return v, ok
}

// MustGet returns the signal value, 0 if absent. For callers that treat
// absence as zero by contract.
func (f *FileSignals) MustGet(sig Signal) float64 { return f.nums[sig] }

// SetPercentile records a percentile rank for a signal.
func (f *FileSignals) SetPercentile(sig Signal, rank float64) { f.pcts[sig] = rank }

// Percentile returns the percentile rank of a signal; ok is false in
// absolute-tier runs and for signals without a value.
func (f *FileSignals) Percentile(sig Signal) (float64, bool) {
	v, ok := f.pcts[sig]
	return v, ok
}

// Numbers returns a copy of all numeric signal values.
func (f *FileSignals) Numbers() map[Signal]float64 {
	out := make(map[Signal]float64, len(f.nums))
	for sig, v := range f.nums {
		out[sig] = v
	}
	return out
}

// Percentiles returns a copy of all percentile ranks.
func (f *FileSignals) Percentiles() map[Signal]float64 {
	out := make(map[Signal]float64, len(f.pcts))
	for sig, v := range f.pcts {
		out[sig] = v
	}
	return out
}

// DirSignals aggregates the files of one directory.
type DirSignals struct {
	Path  string
	Files []string

	DominantRole       snapshot.Role
	DominantTrajectory temporal.Trajectory

	nums values
}

// NewDirSignals initializes an empty per-directory record.
func NewDirSignals(path string) *DirSignals {
	return &DirSignals{Path: path, nums: make(values)}
}

// Set records a numeric signal value. First write wins.
func (d *DirSignals) Set(sig Signal, v float64) { d.nums.set(d.Path, sig, v) }

// Get returns a numeric signal value.
func (d *DirSignals) Get(sig Signal) (float64, bool) {
	v, ok := d.nums[sig]
	return v, ok
}

// Numbers returns a copy of all numeric signal values.
func (d *DirSignals) Numbers() map[Signal]float64 {
	out := make(map[Signal]float64, len(d.nums))
	for sig, v := range d.nums {
		out[sig] = v
	}
	return out
}

// ModuleSignals holds per-module structure and dynamics.
type ModuleSignals struct {
	Name  string
	Files []string

	// Layer is the inferred architectural layer, 0 = foundation.
	Layer int

	nums values
}

// NewModuleSignals initializes an empty per-module record.
func NewModuleSignals(name string) *ModuleSignals {
	return &ModuleSignals{Name: name, nums: make(values)}
}

// Set records a numeric signal value. First write wins.
func (m *ModuleSignals) Set(sig Signal, v float64) { m.nums.set(m.Name, sig, v) }

// Get returns a numeric signal value.
func (m *ModuleSignals) Get(sig Signal) (float64, bool) {
	v, ok := m.nums[sig]
	return v, ok
}

// MustGet returns the signal value, 0 if absent.
func (m *ModuleSignals) MustGet(sig Signal) float64 { return m.nums[sig] }

// Numbers returns a copy of all numeric signal values.
func (m *ModuleSignals) Numbers() map[Signal]float64 {
	out := make(map[Signal]float64, len(m.nums))
	for sig, v := range m.nums {
		out[sig] = v
	}
	return out
}

// GlobalSignals holds codebase-wide values.
type GlobalSignals struct {
	nums values
}

// NewGlobalSignals initializes an empty global record.
func NewGlobalSignals() *GlobalSignals {
	return &GlobalSignals{nums: make(values)}
}

// Set records a numeric signal value. First write wins.
func (g *GlobalSignals) Set(sig Signal, v float64) { g.nums.set("global", sig, v) }

// Get returns a numeric signal value.
func (g *GlobalSignals) Get(sig Signal) (float64, bool) {
	v, ok := g.nums[sig]
	return v, ok
}

// MustGet returns the signal value, 0 if absent.
func (g *GlobalSignals) MustGet(sig Signal) float64 { return g.nums[sig] }

// Numbers returns a copy of all numeric signal values.
func (g *GlobalSignals) Numbers() map[Signal]float64 {
	out := make(map[Signal]float64, len(g.nums))
	for sig, v := range g.nums {
		out[sig] = v
	}
	return out
}

// Field is the complete signal state of one engine run, built up stage by
// stage.
type Field struct {
	Files   map[string]*FileSignals
	Dirs    map[string]*DirSignals
	Modules map[string]*ModuleSignals
	Global  *GlobalSignals
}

// NewField initializes an empty field for the given file paths.
func NewField(paths []string) *Field {
	field := &Field{
		Files:   make(map[string]*FileSignals, len(paths)),
		Dirs:    make(map[string]*DirSignals),
		Modules: make(map[string]*ModuleSignals),
		Global:  NewGlobalSignals(),
	}
	for _, p := range paths {
		field.Files[p] = NewFileSignals(p)
	}
	return field
}

// FilePaths returns all file paths in sorted order.
func (f *Field) FilePaths() []string {
	paths := make([]string, 0, len(f.Files))
	for p := range f.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DirPaths returns all directory paths in sorted order.
func (f *Field) DirPaths() []string {
	paths := make([]string, 0, len(f.Dirs))
	for p := range f.Dirs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ModuleNames returns all module names in sorted order.
func (f *Field) ModuleNames() []string {
	names := make([]string, 0, len(f.Modules))
	for n := range f.Modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Module returns the ModuleSignals for name, creating it on first use.
func (f *Field) Module(name string) *ModuleSignals {
	m, ok := f.Modules[name]
	if !ok {
		m = NewModuleSignals(name)
		f.Modules[name] = m
	}
	return m
}

// Dir returns the DirSignals for path, creating it on first use.
func (f *Field) Dir(path string) *DirSignals {
	d, ok := f.Dirs[path]
	if !ok {
		d = NewDirSignals(path)
		f.Dirs[path] = d
	}
	return d
}
