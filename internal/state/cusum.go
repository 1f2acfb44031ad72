package state

import "math"

// CUSUMDetector implements a two-sided Page-Hinkley cumulative-sum
// change-point detector over a single scalar metric (trade rate,
// spread, or imbalance in §4.A). It takes a target mean from the first
// three observed samples, then accumulates positive and
// negative deviations from that target, alarming when either sum
// crosses the configured threshold h.
type CUSUMDetector struct {
	driftK    float64
	threshold float64

	n            int
	targetSum    float64
	targetLocked bool
	target       float64

	sPlus  float64
	sMinus float64

	changePointIndex int // -1 until latched
	changePointMS    int64
}

// NewCUSUMDetector creates a detector with drift allowance k and
// alarm threshold h (§4.A defaults: k=0.5, h=5.0).
func NewCUSUMDetector(driftK, threshold float64) *CUSUMDetector {
	return &CUSUMDetector{driftK: driftK, threshold: threshold, changePointIndex: -1}
}

// targetWarmupSamples is how many leading samples seed the target
// mean before CUSUM accumulation starts comparing against it.
const targetWarmupSamples = 3

// Observe folds in one sample at timestamp tsMS. Returns true the
// first time this call causes either sum to cross the threshold
// (edge-triggered; subsequent crossings while already alarmed do not
// re-fire unless Reset is called).
func (c *CUSUMDetector) Observe(x float64, tsMS int64) bool {
	c.n++

	if !c.targetLocked {
		c.targetSum += x
		c.target = c.targetSum / float64(c.n)
		if c.n >= targetWarmupSamples {
			c.targetLocked = true
		}
		return false
	}

	dev := x - c.target
	c.sPlus = math.Max(0, c.sPlus+dev-c.driftK)
	c.sMinus = math.Max(0, c.sMinus-dev-c.driftK)

	if c.changePointIndex < 0 && (c.sPlus >= c.threshold || c.sMinus >= c.threshold) {
		c.changePointIndex = c.n
		c.changePointMS = tsMS
		return true
	}
	return false
}

// Alarmed reports whether a change point has latched.
func (c *CUSUMDetector) Alarmed() bool { return c.changePointIndex >= 0 }

// Direction reports the sign of the latched shift: increase when
// S+ tripped the threshold, decrease when S- did, none otherwise.
func (c *CUSUMDetector) Direction() (increase bool, decrease bool) {
	if c.changePointIndex < 0 {
		return false, false
	}
	return c.sPlus >= c.threshold, c.sMinus >= c.threshold
}

// ChangePointTimestamp returns the timestamp of the latched change
// point, or nil if none has latched yet.
func (c *CUSUMDetector) ChangePointTimestamp() *int64 {
	if c.changePointIndex < 0 {
		return nil
	}
	ts := c.changePointMS
	return &ts
}

// FocusStatistic is max(S+, S-), the magnitude used for scoring.
func (c *CUSUMDetector) FocusStatistic() float64 {
	return math.Max(c.sPlus, c.sMinus)
}

// Reset clears accumulated state and re-arms detection, used after a
// latched change point has been consumed so the detector can find the
// next one (§4.A "latched until reset").
func (c *CUSUMDetector) Reset() {
	c.n = 0
	c.targetSum = 0
	c.targetLocked = false
	c.target = 0
	c.sPlus = 0
	c.sMinus = 0
	c.changePointIndex = -1
	c.changePointMS = 0
}
