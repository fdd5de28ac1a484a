// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_RejectsUnbalancedWeights(t *testing.T) {
	cfg := Default()
	cfg.Weights.RawRisk.PageRank = 0.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate_RejectsNegativeFloor(t *testing.T) {
	cfg := Default()
	cfg.Floors.Lines = -1

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := Default()
	assert.Greater(t, cfg.EffectiveWorkers(), 0)

	cfg.Workers = 3
	assert.Equal(t, 3, cfg.EffectiveWorkers())
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insight.yaml")
	overlay := []byte("workers: 2\nfloors:\n  lines: 50\n")
	require.NoError(t, os.WriteFile(path, overlay, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 50.0, cfg.Floors.Lines)
	// Untouched defaults survive the overlay.
	assert.Equal(t, 0.25, cfg.Weights.RawRisk.PageRank)
}

func TestLoad_InvalidOverlayFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insight.yaml")
	overlay := []byte("weights:\n  raw_risk:\n    pagerank: 0.9\n")
	require.NoError(t, os.WriteFile(path, overlay, 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
