package research

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sawpanic/marketintel/internal/types"
)

// pointBiserial computes the point-biserial correlation between a
// boolean predictor and a boolean outcome, its two-tailed p-value via
// the Student's t approximation, and a 95% CI via the Fisher
// z-transform. n<3 returns a zero-valued, wide-open CI (testable
// boundary: r stays in [-1,1] even in degenerate cases).
func pointBiserial(predictor []bool, outcome []bool) (r, pValue, ciLower, ciUpper float64) {
	n := len(predictor)
	if n < 3 {
		return 0, 1, -1, 1
	}

	x := make([]float64, n) // predictor as 0/1
	y := make([]float64, n) // outcome as 0/1
	for i := range predictor {
		if predictor[i] {
			x[i] = 1
		}
		if outcome[i] {
			y[i] = 1
		}
	}

	r = pearson(x, y)
	r = clampCorr(r)

	df := float64(n - 2)
	if df <= 0 || math.Abs(r) >= 1 {
		pValue = 0
	} else {
		tStat := r * math.Sqrt(df/(1-r*r))
		tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pValue = 2 * (1 - tdist.CDF(math.Abs(tStat)))
	}

	ciLower, ciUpper = fisherZCI(r, n)
	return r, pValue, ciLower, ciUpper
}

// pearson is the standard product-moment correlation coefficient.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var sx, sy, sxy, sxx, syy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 {
		return 0
	}
	return sxy / denom
}

func clampCorr(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// fisherZCI computes a 95% CI for r via the Fisher z-transform.
func fisherZCI(r float64, n int) (lo, hi float64) {
	if n < 4 || math.Abs(r) >= 1 {
		return -1, 1
	}
	z := 0.5 * math.Log((1+r)/(1-r))
	se := 1 / math.Sqrt(float64(n-3))
	const z95 = 1.959963984540054
	zLo := z - z95*se
	zHi := z + z95*se
	lo = math.Tanh(zLo)
	hi = math.Tanh(zHi)
	return clampCorr(lo), clampCorr(hi)
}

// contrarianScore is the AUC scalar score of §4.D: 0.25 indicators
// each for price/trend/ofi/tail.
func contrarianScore(e types.ContrarianEvent) float64 {
	score := 0.0
	if e.IsPriceContrarian {
		score += 0.25
	}
	if e.IsAgainstTrend {
		score += 0.25
	}
	if e.IsAgainstOFI {
		score += 0.25
	}
	if e.IsTailTrade {
		score += 0.25
	}
	return score
}

// computeAUC implements the trapezoidal-rule AUC over (score, label)
// pairs. Returns 0.5 when all labels are identical (no ranking
// information); property #9.
func computeAUC(scores []float64, labels []bool) float64 {
	n := len(scores)
	if n == 0 {
		return 0.5
	}

	type pair struct {
		score float64
		label bool
	}
	pairs := make([]pair, n)
	posCount, negCount := 0, 0
	for i := range scores {
		pairs[i] = pair{scores[i], labels[i]}
		if labels[i] {
			posCount++
		} else {
			negCount++
		}
	}
	if posCount == 0 || negCount == 0 {
		return 0.5
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// Trapezoidal-rule AUC via the ROC curve built by sweeping
	// thresholds from highest to lowest score.
	var tpr, fpr []float64
	tp, fp := 0, 0
	tpr = append(tpr, 0)
	fpr = append(fpr, 0)
	for i := n - 1; i >= 0; i-- {
		if pairs[i].label {
			tp++
		} else {
			fp++
		}
		tpr = append(tpr, float64(tp)/float64(posCount))
		fpr = append(fpr, float64(fp)/float64(negCount))
	}

	auc := 0.0
	for i := 1; i < len(tpr); i++ {
		width := fpr[i] - fpr[i-1]
		height := (tpr[i] + tpr[i-1]) / 2
		auc += width * height
	}
	if auc < 0 {
		auc = 0
	}
	if auc > 1 {
		auc = 1
	}
	return auc
}
