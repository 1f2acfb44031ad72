package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRobustStats_Basic(t *testing.T) {
	values := []float64{10, 12, 11, 10, 13, 100}
	stats := ComputeRobustStats(values)
	assert.Equal(t, 6, stats.N)
	assert.InDelta(t, 11, stats.Median, 0.5)
	assert.Greater(t, stats.MAD, 0.0)
}

func TestComputeRobustStats_EmptyBoundary(t *testing.T) {
	stats := ComputeRobustStats(nil)
	assert.Equal(t, 0, stats.N)
	assert.Equal(t, 0.0, stats.Median)
	assert.Equal(t, 0.0, stats.MAD)
}

func TestRobustStats_RobustZ_ZeroMADBoundary(t *testing.T) {
	stats := ComputeRobustStats([]float64{5, 5, 5, 5})
	assert.Equal(t, 0.0, stats.RobustZ(5))
	assert.True(t, math.IsInf(stats.RobustZ(500), 1))
	assert.True(t, math.IsInf(stats.RobustZ(-500), -1))
}

func TestRobustStats_RobustZ_OutlierIsLarge(t *testing.T) {
	stats := ComputeRobustStats([]float64{10, 11, 9, 10, 12, 11, 10})
	z := stats.RobustZ(1000)
	assert.Greater(t, z, 5.0)
}
