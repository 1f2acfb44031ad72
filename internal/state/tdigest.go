package state

import (
	"math"
	"sort"
)

// TDigest is a streaming quantile estimator. It is not required to be
// any particular published algorithm (spec.md §4.A: "the spec is
// behavioral"); this implementation merges centroids under a bounded
// per-centroid capacity derived from the compression parameter, giving
// O(compression) memory. Insertion finds its position by binary search,
// but the capacity check and the slice insert are linear in the number
// of centroids, and percentile/percentileRank queries compress and then
// scan the centroids linearly. It is safe
// for use by a single owner goroutine; concurrent access requires
// external synchronization (spec.md §5 "single worker per token").
type TDigest struct {
	compression float64
	centroids   []centroid
	count       float64
	unmerged    int
}

type centroid struct {
	mean  float64
	count float64
}

// NewTDigest creates a digest with the given compression constant
// (higher = more accuracy, more memory). 100 is a reasonable default.
func NewTDigest(compression float64) *TDigest {
	if compression < 20 {
		compression = 20
	}
	return &TDigest{compression: compression}
}

// Add inserts one observation with unit weight.
func (d *TDigest) Add(x float64) {
	d.AddWeighted(x, 1)
}

// AddWeighted inserts one observation with the given weight, used by
// Merge to fold in another digest's centroids.
func (d *TDigest) AddWeighted(x, weight float64) {
	if weight <= 0 {
		return
	}
	d.count += weight

	// Find insertion point by mean.
	idx := sort.Search(len(d.centroids), func(i int) bool {
		return d.centroids[i].mean >= x
	})

	// Try to merge into a neighboring centroid if capacity allows.
	candidates := []int{}
	if idx < len(d.centroids) {
		candidates = append(candidates, idx)
	}
	if idx > 0 {
		candidates = append(candidates, idx-1)
	}

	bestIdx := -1
	bestDist := math.MaxFloat64
	for _, ci := range candidates {
		c := d.centroids[ci]
		cap := d.maxCentroidWeight(ci)
		if c.count+weight > cap {
			continue
		}
		dist := math.Abs(c.mean - x)
		if dist < bestDist {
			bestDist = dist
			bestIdx = ci
		}
	}

	if bestIdx >= 0 {
		c := &d.centroids[bestIdx]
		newCount := c.count + weight
		c.mean += (x - c.mean) * (weight / newCount)
		c.count = newCount
	} else {
		// Insert a fresh centroid at idx.
		d.centroids = append(d.centroids, centroid{})
		copy(d.centroids[idx+1:], d.centroids[idx:])
		d.centroids[idx] = centroid{mean: x, count: weight}
	}

	d.unmerged++
	if d.unmerged > int(d.compression)*2 {
		d.compress()
	}
}

// maxCentroidWeight bounds a centroid's size by its approximate
// quantile position, per the t-digest scale-function idea: centroids
// near the median may grow larger than centroids near the tails,
// which is what preserves tail accuracy.
func (d *TDigest) maxCentroidWeight(idx int) float64 {
	if d.count == 0 {
		return d.count
	}
	cumulative := 0.0
	for i := 0; i < idx; i++ {
		cumulative += d.centroids[i].count
	}
	q := (cumulative + d.centroids[idx].count/2) / d.count
	// Scale function: more capacity mid-distribution, less at tails.
	return 4 * d.count * q * (1 - q) / d.compression
}

func (d *TDigest) compress() {
	if len(d.centroids) == 0 {
		return
	}
	sort.Slice(d.centroids, func(i, j int) bool { return d.centroids[i].mean < d.centroids[j].mean })

	merged := make([]centroid, 0, len(d.centroids))
	cur := d.centroids[0]
	cumulative := 0.0
	for _, c := range d.centroids[1:] {
		cap := 4 * d.count * ((cumulative+cur.count/2)/d.count) * (1 - (cumulative+cur.count/2)/d.count) / d.compression
		if cur.count+c.count <= cap || cap <= 0 {
			newCount := cur.count + c.count
			cur.mean += (c.mean - cur.mean) * (c.count / newCount)
			cur.count = newCount
		} else {
			cumulative += cur.count
			merged = append(merged, cur)
			cur = c
		}
	}
	merged = append(merged, cur)
	d.centroids = merged
	d.unmerged = 0
}

// Percentile returns the value at quantile p in [0,100]. Monotone
// non-decreasing in p (testable property #1). Empty digest returns 0.
func (d *TDigest) Percentile(p float64) float64 {
	d.compress()
	if len(d.centroids) == 0 {
		return 0
	}
	if p <= 0 {
		return d.centroids[0].mean
	}
	if p >= 100 {
		return d.centroids[len(d.centroids)-1].mean
	}

	target := (p / 100) * d.count
	cumulative := 0.0
	for i, c := range d.centroids {
		next := cumulative + c.count
		if target <= next || i == len(d.centroids)-1 {
			if c.count <= 1 {
				return c.mean
			}
			// Linear interpolation within the centroid's span.
			frac := (target - cumulative) / c.count
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
			var lo, hi float64
			if i == 0 {
				lo = c.mean
			} else {
				lo = (d.centroids[i-1].mean + c.mean) / 2
			}
			if i == len(d.centroids)-1 {
				hi = c.mean
			} else {
				hi = (c.mean + d.centroids[i+1].mean) / 2
			}
			return lo + frac*(hi-lo)
		}
		cumulative = next
	}
	return d.centroids[len(d.centroids)-1].mean
}

// PercentileRank returns the estimated percentile (0-100) of x within
// the digest's observed distribution. Monotone non-decreasing in x
// (testable property #2). An empty digest returns 50 (boundary
// behavior).
func (d *TDigest) PercentileRank(x float64) float64 {
	d.compress()
	if len(d.centroids) == 0 {
		return 50
	}
	if x <= d.centroids[0].mean {
		return 0
	}
	if x >= d.centroids[len(d.centroids)-1].mean {
		return 100
	}

	cumulative := 0.0
	for i, c := range d.centroids {
		if x < c.mean {
			// Interpolate between previous cumulative and this centroid.
			var prevMean float64
			if i == 0 {
				prevMean = c.mean
			} else {
				prevMean = d.centroids[i-1].mean
			}
			span := c.mean - prevMean
			frac := 0.0
			if span > 0 {
				frac = (x - prevMean) / span
			}
			rank := cumulative + frac*c.count/2
			return clampPercent(100 * rank / d.count)
		}
		cumulative += c.count
	}
	return 100
}

// Count returns the number of observations inserted.
func (d *TDigest) Count() float64 { return d.count }

// Merge folds another digest's centroids into this one, enabling
// sharding across workers.
func (d *TDigest) Merge(other *TDigest) {
	if other == nil {
		return
	}
	other.compress()
	for _, c := range other.centroids {
		d.AddWeighted(c.mean, c.count)
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
