package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPointBiserial_BoundedAndCIBracketsR is testable property #8:
// r stays in [-1,1], p in [0,1], and the CI brackets r.
func TestPointBiserial_BoundedAndCIBracketsR(t *testing.T) {
	predictor := []bool{true, true, false, false, true, false, true, false, true, false}
	outcome := []bool{true, false, false, true, true, false, true, false, false, true}

	r, p, lo, hi := pointBiserial(predictor, outcome)
	assert.GreaterOrEqual(t, r, -1.0)
	assert.LessOrEqual(t, r, 1.0)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
	assert.LessOrEqual(t, lo, r)
	assert.GreaterOrEqual(t, hi, r)
}

func TestPointBiserial_DegenerateSmallSample(t *testing.T) {
	r, p, lo, hi := pointBiserial([]bool{true}, []bool{true})
	assert.Equal(t, 0.0, r)
	assert.Equal(t, 1.0, p)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
}

// TestComputeAUC_BoundaryCases is testable property #9.
func TestComputeAUC_BoundaryCases(t *testing.T) {
	assert.Equal(t, 0.5, computeAUC(nil, nil))

	allSameLabel := computeAUC([]float64{0.1, 0.5, 0.9}, []bool{true, true, true})
	assert.Equal(t, 0.5, allSameLabel)

	perfect := computeAUC([]float64{0.1, 0.2, 0.8, 0.9}, []bool{false, false, true, true})
	assert.InDelta(t, 1.0, perfect, 1e-9)

	inverted := computeAUC([]float64{0.1, 0.2, 0.8, 0.9}, []bool{true, true, false, false})
	assert.InDelta(t, 0.0, inverted, 1e-9)
}

// TestBenjaminiHochberg_WorkedExample verifies against spec scenario S6.
func TestBenjaminiHochberg_WorkedExample(t *testing.T) {
	raw := []float64{0.01, 0.04, 0.03, 0.005}
	adjusted, significant := BenjaminiHochberg(raw, 0.05)

	assert.InDelta(t, 0.02, adjusted[3], 1e-9) // original p=0.005, sorted rank 1
	for i, sig := range significant {
		assert.True(t, sig, "index %d expected significant", i)
	}
}

func TestBenjaminiHochberg_SingleValuePassesThrough(t *testing.T) {
	adjusted, significant := BenjaminiHochberg([]float64{0.03}, 0.05)
	assert.Equal(t, []float64{0.03}, adjusted)
	assert.True(t, significant[0])
}

func TestBenjaminiHochberg_MonotoneWhenSorted(t *testing.T) {
	raw := []float64{0.2, 0.01, 0.15, 0.001, 0.3}
	adjusted, _ := BenjaminiHochberg(raw, 0.05)

	type pair struct {
		p, adj float64
	}
	pairs := make([]pair, len(raw))
	for i := range raw {
		pairs[i] = pair{raw[i], adjusted[i]}
	}
	for i := 0; i < len(pairs); i++ {
		for j := 0; j < len(pairs); j++ {
			if pairs[i].p < pairs[j].p {
				assert.LessOrEqual(t, pairs[i].adj, pairs[j].adj)
			}
		}
	}
}

func TestBenjaminiHochberg_Empty(t *testing.T) {
	adjusted, significant := BenjaminiHochberg(nil, 0.05)
	assert.Empty(t, adjusted)
	assert.Empty(t, significant)
}
