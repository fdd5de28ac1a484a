// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config carries the tunable knobs of the fusion engine: composite
// weights, absolute percentile floors, and worker limits. Defaults are the
// calibrated values; a YAML file can overlay any subset of them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// weightSumTolerance bounds how far a weight group may drift from 1.0.
const weightSumTolerance = 1e-9

// ErrInvalidConfig wraps all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid config")

// RawRiskWeights shape the pre-normalization risk blend.
type RawRiskWeights struct {
	PageRank      float64 `yaml:"pagerank" validate:"gte=0,lte=1"`
	BlastRadius   float64 `yaml:"blast_radius" validate:"gte=0,lte=1"`
	CognitiveLoad float64 `yaml:"cognitive_load" validate:"gte=0,lte=1"`
	Instability   float64 `yaml:"instability" validate:"gte=0,lte=1"`
	BusFactor     float64 `yaml:"bus_factor" validate:"gte=0,lte=1"`
}

func (w RawRiskWeights) sum() float64 {
	return w.PageRank + w.BlastRadius + w.CognitiveLoad + w.Instability + w.BusFactor
}

// RiskScoreWeights shape the percentile-based per-file risk composite.
type RiskScoreWeights struct {
	PageRank      float64 `yaml:"pagerank" validate:"gte=0,lte=1"`
	BlastRadius   float64 `yaml:"blast_radius" validate:"gte=0,lte=1"`
	CognitiveLoad float64 `yaml:"cognitive_load" validate:"gte=0,lte=1"`
	Instability   float64 `yaml:"instability" validate:"gte=0,lte=1"`
	BusFactor     float64 `yaml:"bus_factor" validate:"gte=0,lte=1"`
}

func (w RiskScoreWeights) sum() float64 {
	return w.PageRank + w.BlastRadius + w.CognitiveLoad + w.Instability + w.BusFactor
}

// WiringQualityWeights shape the per-file wiring penalty blend.
type WiringQualityWeights struct {
	Orphan  float64 `yaml:"orphan" validate:"gte=0,lte=1"`
	Stub    float64 `yaml:"stub" validate:"gte=0,lte=1"`
	Phantom float64 `yaml:"phantom" validate:"gte=0,lte=1"`
	Broken  float64 `yaml:"broken" validate:"gte=0,lte=1"`
}

func (w WiringQualityWeights) sum() float64 {
	return w.Orphan + w.Stub + w.Phantom + w.Broken
}

// FileHealthWeights shape the per-file health composite.
type FileHealthWeights struct {
	Risk          float64 `yaml:"risk" validate:"gte=0,lte=1"`
	Wiring        float64 `yaml:"wiring" validate:"gte=0,lte=1"`
	CognitiveLoad float64 `yaml:"cognitive_load" validate:"gte=0,lte=1"`
	Stub          float64 `yaml:"stub" validate:"gte=0,lte=1"`
	Orphan        float64 `yaml:"orphan" validate:"gte=0,lte=1"`
}

func (w FileHealthWeights) sum() float64 {
	return w.Risk + w.Wiring + w.CognitiveLoad + w.Stub + w.Orphan
}

// ModuleHealthWeights shape the per-module health composite.
type ModuleHealthWeights struct {
	Cohesion        float64 `yaml:"cohesion" validate:"gte=0,lte=1"`
	Coupling        float64 `yaml:"coupling" validate:"gte=0,lte=1"`
	Distance        float64 `yaml:"distance" validate:"gte=0,lte=1"`
	Boundary        float64 `yaml:"boundary" validate:"gte=0,lte=1"`
	RoleConsistency float64 `yaml:"role_consistency" validate:"gte=0,lte=1"`
	Stub            float64 `yaml:"stub" validate:"gte=0,lte=1"`
}

func (w ModuleHealthWeights) sum() float64 {
	return w.Cohesion + w.Coupling + w.Distance + w.Boundary + w.RoleConsistency + w.Stub
}

// WiringScoreWeights shape the global wiring composite.
type WiringScoreWeights struct {
	Orphan  float64 `yaml:"orphan" validate:"gte=0,lte=1"`
	Phantom float64 `yaml:"phantom" validate:"gte=0,lte=1"`
	Glue    float64 `yaml:"glue" validate:"gte=0,lte=1"`
	Stub    float64 `yaml:"stub" validate:"gte=0,lte=1"`
	Clone   float64 `yaml:"clone" validate:"gte=0,lte=1"`
}

func (w WiringScoreWeights) sum() float64 {
	return w.Orphan + w.Phantom + w.Glue + w.Stub + w.Clone
}

// ArchitectureHealthWeights shape the global architecture composite.
type ArchitectureHealthWeights struct {
	Violations float64 `yaml:"violations" validate:"gte=0,lte=1"`
	Cohesion   float64 `yaml:"cohesion" validate:"gte=0,lte=1"`
	Coupling   float64 `yaml:"coupling" validate:"gte=0,lte=1"`
	Distance   float64 `yaml:"distance" validate:"gte=0,lte=1"`
	Alignment  float64 `yaml:"alignment" validate:"gte=0,lte=1"`
}

func (w ArchitectureHealthWeights) sum() float64 {
	return w.Violations + w.Cohesion + w.Coupling + w.Distance + w.Alignment
}

// TeamRiskWeights shape the global team-risk composite.
type TeamRiskWeights struct {
	BusFactor    float64 `yaml:"bus_factor" validate:"gte=0,lte=1"`
	Knowledge    float64 `yaml:"knowledge" validate:"gte=0,lte=1"`
	Coordination float64 `yaml:"coordination" validate:"gte=0,lte=1"`
	Conway       float64 `yaml:"conway" validate:"gte=0,lte=1"`
}

func (w TeamRiskWeights) sum() float64 {
	return w.BusFactor + w.Knowledge + w.Coordination + w.Conway
}

// CodebaseHealthWeights shape the top-level composite.
type CodebaseHealthWeights struct {
	Architecture float64 `yaml:"architecture" validate:"gte=0,lte=1"`
	Wiring       float64 `yaml:"wiring" validate:"gte=0,lte=1"`
	BusFactor    float64 `yaml:"bus_factor" validate:"gte=0,lte=1"`
	Modularity   float64 `yaml:"modularity" validate:"gte=0,lte=1"`
}

func (w CodebaseHealthWeights) sum() float64 {
	return w.Architecture + w.Wiring + w.BusFactor + w.Modularity
}

// Weights groups every composite weight set.
type Weights struct {
	RawRisk            RawRiskWeights            `yaml:"raw_risk"`
	RiskScore          RiskScoreWeights          `yaml:"risk_score"`
	WiringQuality      WiringQualityWeights      `yaml:"wiring_quality"`
	FileHealth         FileHealthWeights         `yaml:"file_health"`
	ModuleHealth       ModuleHealthWeights       `yaml:"module_health"`
	WiringScore        WiringScoreWeights        `yaml:"wiring_score"`
	ArchitectureHealth ArchitectureHealthWeights `yaml:"architecture_health"`
	TeamRisk           TeamRiskWeights           `yaml:"team_risk"`
	CodebaseHealth     CodebaseHealthWeights     `yaml:"codebase_health"`
}

// Floors are absolute minimums below which a percentile rank is forced to
// 0: a value that small is not remarkable no matter how it ranks.
type Floors struct {
	PageRank        float64 `yaml:"pagerank" validate:"gte=0"`
	BlastRadiusSize float64 `yaml:"blast_radius_size" validate:"gte=0"`
	CognitiveLoad   float64 `yaml:"cognitive_load" validate:"gte=0"`
	Lines           float64 `yaml:"lines" validate:"gte=0"`
}

// Config is the complete engine configuration.
type Config struct {
	// Workers bounds within-stage fan-out. 0 means NumCPU.
	Workers int `yaml:"workers" validate:"gte=0"`

	Weights Weights `yaml:"weights"`
	Floors  Floors  `yaml:"floors"`
}

// Default returns the calibrated configuration.
func Default() *Config {
	return &Config{
		Weights: Weights{
			RawRisk: RawRiskWeights{
				PageRank: 0.25, BlastRadius: 0.20, CognitiveLoad: 0.20,
				Instability: 0.20, BusFactor: 0.15,
			},
			RiskScore: RiskScoreWeights{
				PageRank: 0.25, BlastRadius: 0.20, CognitiveLoad: 0.20,
				Instability: 0.20, BusFactor: 0.15,
			},
			WiringQuality: WiringQualityWeights{
				Orphan: 0.30, Stub: 0.25, Phantom: 0.25, Broken: 0.20,
			},
			FileHealth: FileHealthWeights{
				Risk: 0.25, Wiring: 0.25, CognitiveLoad: 0.20, Stub: 0.15, Orphan: 0.15,
			},
			ModuleHealth: ModuleHealthWeights{
				Cohesion: 0.20, Coupling: 0.15, Distance: 0.20,
				Boundary: 0.15, RoleConsistency: 0.15, Stub: 0.15,
			},
			WiringScore: WiringScoreWeights{
				Orphan: 0.25, Phantom: 0.25, Glue: 0.20, Stub: 0.15, Clone: 0.15,
			},
			ArchitectureHealth: ArchitectureHealthWeights{
				Violations: 0.25, Cohesion: 0.20, Coupling: 0.20, Distance: 0.20, Alignment: 0.15,
			},
			TeamRisk: TeamRiskWeights{
				BusFactor: 0.30, Knowledge: 0.25, Coordination: 0.25, Conway: 0.20,
			},
			CodebaseHealth: CodebaseHealthWeights{
				Architecture: 0.30, Wiring: 0.30, BusFactor: 0.20, Modularity: 0.20,
			},
		},
		Floors: Floors{
			PageRank:        0.005,
			BlastRadiusSize: 5,
			CognitiveLoad:   10,
			Lines:           100,
		},
	}
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that every weight group sums to 1.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	groups := map[string]float64{
		"raw_risk":            c.Weights.RawRisk.sum(),
		"risk_score":          c.Weights.RiskScore.sum(),
		"wiring_quality":      c.Weights.WiringQuality.sum(),
		"file_health":         c.Weights.FileHealth.sum(),
		"module_health":       c.Weights.ModuleHealth.sum(),
		"wiring_score":        c.Weights.WiringScore.sum(),
		"architecture_health": c.Weights.ArchitectureHealth.sum(),
		"team_risk":           c.Weights.TeamRisk.sum(),
		"codebase_health":     c.Weights.CodebaseHealth.sum(),
	}
	for name, sum := range groups {
		if math.Abs(sum-1.0) > weightSumTolerance {
			return fmt.Errorf("%w: %s weights sum to %v, want 1.0", ErrInvalidConfig, name, sum)
		}
	}
	return nil
}

// EffectiveWorkers resolves the worker bound.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Load reads a YAML overlay on top of Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
