package state

import (
	"math"
	"sort"
)

// robustMadConstant is the scale factor that makes MAD a consistent
// estimator of the standard deviation under a normal distribution.
const robustMadConstant = 1.4826

// RobustStats holds the median/MAD summary of a sample, and the
// z-score of a point relative to that summary.
type RobustStats struct {
	Median float64
	MAD    float64
	N      int
}

// ComputeRobustStats returns the median and scaled MAD of values. The
// slice is copied before sorting so the caller's order is preserved.
// An empty slice returns a zero-valued RobustStats.
func ComputeRobustStats(values []float64) RobustStats {
	n := len(values)
	if n == 0 {
		return RobustStats{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	median := percentileSorted(sorted, 0.5)

	deviations := make([]float64, n)
	for i, v := range sorted {
		deviations[i] = math.Abs(v - median)
	}
	sort.Float64s(deviations)
	mad := percentileSorted(deviations, 0.5) * robustMadConstant

	return RobustStats{Median: median, MAD: mad, N: n}
}

// RobustZ scores x against the stats. A zero MAD (degenerate or
// single-valued sample) returns 0 when x sits exactly at the median,
// and +/-Inf otherwise rather than dividing by zero (boundary
// behavior, testable property #3).
func (s RobustStats) RobustZ(x float64) float64 {
	if s.MAD == 0 {
		switch {
		case x == s.Median:
			return 0
		case x > s.Median:
			return math.Inf(1)
		default:
			return math.Inf(-1)
		}
	}
	return (x - s.Median) / s.MAD
}

// percentileSorted computes the linear-interpolation percentile (q in
// [0,1]) of an already-sorted slice.
func percentileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
