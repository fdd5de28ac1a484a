// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewMetrics_RegistersAllInstruments(t *testing.T) {
	meter := sdkmetric.NewMeterProvider().Meter("test")

	m, err := NewMetrics(meter)
	require.NoError(t, err)

	assert.NotNil(t, m.RunsTotal)
	assert.NotNil(t, m.RunDuration)
	assert.NotNil(t, m.StageDuration)
	assert.NotNil(t, m.FilesAnalyzed)
	assert.NotNil(t, m.PhantomEdgesTotal)
	assert.NotNil(t, m.ConvergenceFailuresTotal)
	assert.NotNil(t, m.DegradedSignalsTotal)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "insight", cfg.ServiceName)
	assert.NotEmpty(t, cfg.MetricExporter)
}

func TestInit_NilContext(t *testing.T) {
	_, err := Init(nil, DefaultConfig()) //nolint:staticcheck
	assert.ErrorIs(t, err, ErrNilContext)
}
