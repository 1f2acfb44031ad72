package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawSizeTailScore_Breakpoints(t *testing.T) {
	assert.Equal(t, 0.0, rawSizeTailScore(0))
	assert.Equal(t, 0.5, rawSizeTailScore(95))
	assert.Equal(t, 0.9, rawSizeTailScore(99))
	assert.InDelta(t, 0.98, rawSizeTailScore(99.9), 1e-9)
	assert.Equal(t, 1.0, rawSizeTailScore(100))
}

func TestRawSizeTailScore_Monotone(t *testing.T) {
	prev := -1.0
	for p := 0.0; p <= 100; p += 0.5 {
		v := rawSizeTailScore(p)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestRawSizeTailScore_Interpolation(t *testing.T) {
	// Midpoint of [95,99] should be halfway between 0.5 and 0.9.
	v := rawSizeTailScore(97)
	assert.InDelta(t, 0.7, v, 0.001)
}
