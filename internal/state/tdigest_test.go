package state

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTDigest_PercentileMonotone(t *testing.T) {
	d := NewTDigest(100)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		d.Add(r.Float64() * 1000)
	}

	prev := -1.0
	for p := 0.0; p <= 100; p += 1 {
		v := d.Percentile(p)
		assert.GreaterOrEqual(t, v, prev, "percentile must be monotone non-decreasing")
		prev = v
	}
}

func TestTDigest_PercentileRankMonotone(t *testing.T) {
	d := NewTDigest(100)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		d.Add(r.NormFloat64()*50 + 500)
	}

	prev := -1.0
	for x := 0.0; x <= 1000; x += 10 {
		rank := d.PercentileRank(x)
		assert.GreaterOrEqual(t, rank, prev)
		prev = rank
		assert.GreaterOrEqual(t, rank, 0.0)
		assert.LessOrEqual(t, rank, 100.0)
	}
}

func TestTDigest_EmptyDigestBoundary(t *testing.T) {
	d := NewTDigest(100)
	assert.Equal(t, 0.0, d.Percentile(50))
	assert.Equal(t, 50.0, d.PercentileRank(123))
}

func TestTDigest_KnownUniformApproximatesMedian(t *testing.T) {
	d := NewTDigest(200)
	for i := 1; i <= 1000; i++ {
		d.Add(float64(i))
	}
	median := d.Percentile(50)
	assert.InDelta(t, 500, median, 30)

	p99 := d.Percentile(99)
	assert.InDelta(t, 990, p99, 40)
}

func TestTDigest_Merge(t *testing.T) {
	a := NewTDigest(100)
	b := NewTDigest(100)
	for i := 1; i <= 500; i++ {
		a.Add(float64(i))
	}
	for i := 501; i <= 1000; i++ {
		b.Add(float64(i))
	}
	a.Merge(b)
	assert.Equal(t, 1000.0, a.Count())
	assert.InDelta(t, 500, a.Percentile(50), 50)
}
