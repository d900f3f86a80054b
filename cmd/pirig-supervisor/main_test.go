// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"testing"

	"github.com/ktsol/pirig/internal/ambient"
	"github.com/ktsol/pirig/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSensors_IndexesByID(t *testing.T) {
	specs := []config.SensorSpec{
		{ID: "ambient1", Line: 17},
		{ID: "ambient2", Line: 27},
	}

	sensors := buildSensors(specs)

	require.Len(t, sensors, 2)
	assert.Contains(t, sensors, "ambient1")
	assert.Contains(t, sensors, "ambient2")

	var s *ambient.Sensor = sensors["ambient1"]
	assert.Equal(t, "ambient1", s.ID())
}

func TestBuildSensors_EmptyInputReturnsEmptyMap(t *testing.T) {
	sensors := buildSensors(nil)
	assert.Empty(t, sensors)
}
