// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot defines the immutable input records the fusion engine
// consumes: per-file structural and semantic measurements, the raw import
// edge list, commit history, and entry points. Producing these records
// (scanning, parsing, git extraction) is the job of upstream collaborators;
// this package only models and validates them.
package snapshot

import (
	"time"
)

// Role classifies what a file is for. Roles gate orphan detection: files
// that are entered from outside the import graph are not orphans.
type Role string

const (
	RoleEntryPoint Role = "entry_point"
	RoleTest       Role = "test"
	RoleConfig     Role = "config"
	RoleInterface  Role = "interface"
	RoleException  Role = "exception"
	RoleUtility    Role = "utility"
	RoleModel      Role = "model"
	RoleService    Role = "service"
	RoleCore       Role = "core"
	RoleUnknown    Role = "unknown"
)

// ExemptFromOrphanCheck reports whether a file with this role may
// legitimately have no importers and no imports.
func (r Role) ExemptFromOrphanCheck() bool {
	switch r {
	case RoleEntryPoint, RoleTest, RoleConfig, RoleInterface, RoleException, RoleUtility:
		return true
	default:
		return false
	}
}

// FileRecord carries the structural and semantic measurements of one file.
// All counts are non-negative; all ratios live in [0, 1].
type FileRecord struct {
	// Path identifies the file, relative to the snapshot root, with
	// forward slashes.
	Path string `json:"path" validate:"required"`

	// Module is the logical module the file belongs to. Empty means the
	// file's directory is used as its module.
	Module string `json:"module,omitempty"`

	Role Role `json:"role,omitempty"`

	Lines              int     `json:"lines" validate:"gte=0"`
	FunctionCount      int     `json:"function_count" validate:"gte=0"`
	ClassCount         int     `json:"class_count" validate:"gte=0"`
	AbstractClassCount int     `json:"abstract_class_count" validate:"gte=0"`
	MaxNesting         int     `json:"max_nesting" validate:"gte=0"`
	Complexity         float64 `json:"complexity" validate:"gte=0"`

	// FunctionSizes lists the size of each function in the file. When
	// present it is the source of truth for ImplGini.
	FunctionSizes []float64 `json:"function_size_list,omitempty" validate:"dive,gte=0"`

	// ImplGini measures how unevenly implementation mass is spread across
	// the file's functions. Derived from FunctionSizes when that is set.
	ImplGini float64 `json:"impl_gini" validate:"gte=0,lte=1"`

	// StubRatio is the fraction of functions that are stubs or
	// placeholders.
	StubRatio float64 `json:"stub_ratio" validate:"gte=0,lte=1"`

	ImportCount int `json:"import_count" validate:"gte=0"`

	// BrokenCallCount is the number of calls referencing symbols that do
	// not resolve anywhere in the snapshot.
	BrokenCallCount int `json:"broken_call_count" validate:"gte=0"`

	ConceptCount      int     `json:"concept_count" validate:"gte=0"`
	ConceptEntropy    float64 `json:"concept_entropy" validate:"gte=0"`
	NamingDrift       float64 `json:"naming_drift" validate:"gte=0,lte=1"`
	TodoDensity       float64 `json:"todo_density" validate:"gte=0"`
	DocstringCoverage float64 `json:"docstring_coverage" validate:"gte=0,lte=1"`
	CompressionRatio  float64 `json:"compression_ratio" validate:"gte=0"`
}

// Edge is one raw import edge. Weight defaults to 1 when non-positive.
type Edge struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Weight float64 `json:"weight,omitempty"`
}

// Commit is one commit touching the snapshot, with the files it changed.
type Commit struct {
	Author    string    `json:"author" validate:"required"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Files     []string  `json:"files"`
}

// Snapshot is the complete immutable input of one engine run.
type Snapshot struct {
	Files       []FileRecord `json:"files" validate:"required,min=1,dive"`
	Edges       []Edge       `json:"edges" validate:"dive"`
	Commits     []Commit     `json:"commits" validate:"dive"`
	EntryPoints []string     `json:"entry_points"`

	// TeamSize is the number of people on the owning team. When 0 it is
	// derived from the distinct commit authors.
	TeamSize int `json:"team_size,omitempty" validate:"gte=0"`
}

// ModuleOf returns the effective module of a file record.
func (f *FileRecord) ModuleOf() string {
	if f.Module != "" {
		return f.Module
	}
	return parentDir(f.Path)
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
