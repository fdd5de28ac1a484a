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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CoreSignalsRegistered(t *testing.T) {
	core := []Signal{
		Lines, CognitiveLoad, PageRank, BlastRadiusSize, BusFactor,
		RawRisk, RiskScore, WiringQuality, FileHealthScore, DeltaH,
		Cohesion, Instability, HealthScore,
		Modularity, FiedlerValue, SpectralGap, CodebaseHealth,
	}
	for _, sig := range core {
		_, ok := MetaFor(sig)
		assert.True(t, ok, "missing %s", sig)
	}
}

func TestRegistry_ScopesAndOwners(t *testing.T) {
	meta, ok := MetaFor(RawRisk)
	require.True(t, ok)
	assert.Equal(t, ScopeFile, meta.Scope)
	assert.Equal(t, StageRawRisk, meta.ProducedBy)
	assert.False(t, meta.Percentileable, "raw risk is already max-normalized")

	meta, ok = MetaFor(Velocity)
	require.True(t, ok)
	assert.Equal(t, ScopeModule, meta.Scope)
	assert.Equal(t, StageModuleTemporal, meta.ProducedBy)

	meta, ok = MetaFor(CodebaseHealth)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, meta.Scope)
	assert.Equal(t, StageComposites, meta.ProducedBy)
}

func TestRegistry_AbsoluteThresholds(t *testing.T) {
	meta, _ := MetaFor(Lines)
	require.NotNil(t, meta.AbsoluteThreshold)
	assert.Equal(t, 500.0, *meta.AbsoluteThreshold)

	meta, _ = MetaFor(PhantomImportCount)
	require.NotNil(t, meta.AbsoluteThreshold)
	assert.Zero(t, *meta.AbsoluteThreshold, "any phantom import is concerning")

	meta, _ = MetaFor(PageRank)
	assert.Nil(t, meta.AbsoluteThreshold)
}

func TestPercentileable_OnlyFileScope(t *testing.T) {
	list := Percentileable()
	assert.NotEmpty(t, list)
	for _, sig := range list {
		meta, ok := MetaFor(sig)
		require.True(t, ok)
		assert.Equal(t, ScopeFile, meta.Scope, string(sig))
		assert.True(t, meta.Percentileable, string(sig))
	}
}

func TestField_FirstWriteWins(t *testing.T) {
	f := NewFileSignals("a.go")
	f.Set(Lines, 100)
	f.Set(Lines, 999)

	v, ok := f.Get(Lines)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestField_AbsentSignals(t *testing.T) {
	f := NewFileSignals("a.go")

	_, ok := f.Get(RiskScore)
	assert.False(t, ok)
	assert.Zero(t, f.MustGet(RiskScore))

	_, ok = f.Percentile(PageRank)
	assert.False(t, ok)

	assert.Equal(t, -1, f.Community, "community unset until detection runs")
}

func TestField_TierAccessors(t *testing.T) {
	field := NewField([]string{"b.go", "a.go"})
	assert.Equal(t, []string{"a.go", "b.go"}, field.FilePaths())

	m := field.Module("pkg")
	m.Set(FileCount, 2)
	assert.Same(t, m, field.Module("pkg"), "module record is created once")
	assert.Equal(t, []string{"pkg"}, field.ModuleNames())

	d := field.Dir("pkg")
	assert.Same(t, d, field.Dir("pkg"))

	field.Global.Set(Modularity, 0.5)
	assert.Equal(t, 0.5, field.Global.MustGet(Modularity))
}
