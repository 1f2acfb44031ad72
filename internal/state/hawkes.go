package state

import "math"

// HawkesProxy is a simplified self-exciting point process: every
// event bumps the intensity by alpha, and between events the
// intensity decays exponentially back toward the baseline mu at rate
// beta. It approximates trade-arrival clustering without the cost of
// a full maximum-likelihood Hawkes fit (§4.A "Burst / intensity").
type HawkesProxy struct {
	Mu    float64
	Alpha float64
	Beta  float64

	intensity   float64
	lastEventMS int64
	hasEvent    bool
}

// NewHawkesProxy seeds the intensity at the baseline.
func NewHawkesProxy(mu, alpha, beta float64) *HawkesProxy {
	return &HawkesProxy{Mu: mu, Alpha: alpha, Beta: beta, intensity: mu}
}

// Record folds in a new event at nowMs, decaying the prior intensity
// by the elapsed time before adding the excitation term. The first
// call on a fresh proxy skips the decay (no prior timestamp to decay
// from) and adds the excitation to the baseline.
func (h *HawkesProxy) Record(nowMS int64) {
	if h.hasEvent {
		dt := float64(nowMS-h.lastEventMS) / 1000
		if dt < 0 {
			dt = 0
		}
		h.intensity = h.Mu + (h.intensity-h.Mu)*math.Exp(-h.Beta*dt)
	}
	h.intensity += h.Alpha
	h.lastEventMS = nowMS
	h.hasEvent = true
}

// IntensityAt returns the decayed intensity as of nowMs without
// recording an event, used by read-only feature computation between
// trades.
func (h *HawkesProxy) IntensityAt(nowMS int64) float64 {
	if !h.hasEvent {
		return h.Mu
	}
	dt := float64(nowMS-h.lastEventMS) / 1000
	if dt < 0 {
		dt = 0
	}
	return h.Mu + (h.intensity-h.Mu)*math.Exp(-h.Beta*dt)
}

// IsBurst reports whether intensity has crossed twice the baseline,
// the fixed burst threshold from §4.A.
func (h *HawkesProxy) IsBurst(nowMS int64) bool {
	if h.Mu <= 0 {
		return h.IntensityAt(nowMS) > 0
	}
	return h.IntensityAt(nowMS) >= 2*h.Mu
}

// IntensityRatio is intensity / mu, clamped to avoid division by zero
// when mu is misconfigured as 0.
func (h *HawkesProxy) IntensityRatio(nowMS int64) float64 {
	if h.Mu <= 0 {
		return 0
	}
	return h.IntensityAt(nowMS) / h.Mu
}
