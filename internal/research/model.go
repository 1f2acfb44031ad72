package research

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// modelFeatureNames names the fixed 8-feature matrix of §4.D's model
// report, in column order.
var modelFeatureNames = []string{
	"is_price_contrarian",
	"is_against_trend",
	"is_against_ofi",
	"is_tail_trade",
	"is_asymmetric_book",
	"is_new_wallet",
	"size_percentile_norm",
	"minutes_to_close_norm",
}

func boolCol(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// featureRow builds the fixed 8-feature row for one event. Size
// percentile is divided by 100 and minutes-to-close by the
// caller-supplied maxMinutes so the model is scale-free across tokens.
func featureRow(e types.ContrarianEvent, maxMinutes float64) []float64 {
	sizePercentileNorm := e.SizePercentile / 100
	minutesNorm := 0.0
	if maxMinutes > 0 {
		minutesNorm = e.MinutesBeforeClose / maxMinutes
	}
	return []float64{
		boolCol(e.IsPriceContrarian),
		boolCol(e.IsAgainstTrend),
		boolCol(e.IsAgainstOFI),
		boolCol(e.IsTailTrade),
		boolCol(e.IsAsymmetricBook),
		boolCol(e.IsNewWallet),
		sizePercentileNorm,
		minutesNorm,
	}
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

// fitLogisticRegression runs L2-regularized batch gradient descent on
// a bias + 8-feature design matrix.
func fitLogisticRegression(X *mat.Dense, y []float64, lr float64, iterations int, lambda float64) []float64 {
	rows, cols := X.Dims()
	weights := make([]float64, cols) // includes bias at index 0

	for iter := 0; iter < iterations; iter++ {
		gradient := make([]float64, cols)
		for i := 0; i < rows; i++ {
			z := weights[0]
			for j := 1; j < cols; j++ {
				z += weights[j] * X.At(i, j)
			}
			pred := sigmoid(z)
			err := pred - y[i]
			gradient[0] += err
			for j := 1; j < cols; j++ {
				gradient[j] += err*X.At(i, j) + lambda*weights[j]
			}
		}
		for j := 0; j < cols; j++ {
			weights[j] -= lr * gradient[j] / float64(rows)
		}
	}
	return weights
}

func buildDesignMatrix(events []types.ContrarianEvent, maxMinutes float64) (*mat.Dense, []float64) {
	rows := len(events)
	cols := len(modelFeatureNames) + 1 // + bias
	data := make([]float64, rows*cols)
	labels := make([]float64, rows)
	for i, e := range events {
		data[i*cols] = 1 // bias column
		fr := featureRow(e, maxMinutes)
		for j, v := range fr {
			data[i*cols+1+j] = v
		}
		if e.OutcomeWon {
			labels[i] = 1
		}
	}
	return mat.NewDense(rows, cols, data), labels
}

func predict(weights []float64, row []float64) float64 {
	z := weights[0]
	for j, v := range row {
		z += weights[j+1] * v
	}
	return sigmoid(z)
}

// ComputeModelReport implements the "Model report" clause of §4.D.
// Returns nil when fewer than cfg.MinModelEvents are available.
func ComputeModelReport(events []types.ContrarianEvent, cfg config.ResearchConfig) *types.ModelReport {
	if len(events) < cfg.MinModelEvents {
		return nil
	}
	sorted := sortedByTimestamp(events)

	maxMinutes := 0.0
	for _, e := range sorted {
		if e.MinutesBeforeClose > maxMinutes {
			maxMinutes = e.MinutesBeforeClose
		}
	}

	train, validate, test := chronologicalSplit(sorted)
	X, y := buildDesignMatrix(train, maxMinutes)
	weights := fitLogisticRegression(X, y, cfg.ModelLearningRate, cfg.ModelIterations, cfg.ModelL2Lambda)

	importance := featureImportance(weights)

	report := &types.ModelReport{
		Coefficients:      weights[1:],
		FeatureNames:      modelFeatureNames,
		FeatureImportance: importance,
		AUCTrain:          aucForSplit(weights, train, maxMinutes),
		AUCValidate:       aucForSplit(weights, validate, maxMinutes),
		AUCTest:           aucForSplit(weights, test, maxMinutes),
		CalibrationCurve:  calibrationCurve(weights, test, maxMinutes),
	}
	return report
}

func featureImportance(weights []float64) []float64 {
	total := 0.0
	abs := make([]float64, len(weights)-1)
	for i := 1; i < len(weights); i++ {
		a := math.Abs(weights[i])
		abs[i-1] = a
		total += a
	}
	if total == 0 {
		return abs
	}
	out := make([]float64, len(abs))
	for i, a := range abs {
		out[i] = a / total
	}
	return out
}

func aucForSplit(weights []float64, events []types.ContrarianEvent, maxMinutes float64) float64 {
	if len(events) == 0 {
		return 0.5
	}
	scores := make([]float64, len(events))
	labels := make([]bool, len(events))
	for i, e := range events {
		scores[i] = predict(weights, featureRow(e, maxMinutes))
		labels[i] = e.OutcomeWon
	}
	return computeAUC(scores, labels)
}

// calibrationCurve bins the test set into 10 equal-width probability
// bins and reports mean-predicted vs. observed rate per non-empty bin
// (empty bins are filtered out).
func calibrationCurve(weights []float64, events []types.ContrarianEvent, maxMinutes float64) []types.CalibrationBin {
	const numBins = 10
	type acc struct {
		sumPred float64
		wins    int
		n       int
	}
	bins := make([]acc, numBins)

	for _, e := range events {
		p := predict(weights, featureRow(e, maxMinutes))
		idx := int(p * numBins)
		if idx >= numBins {
			idx = numBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].sumPred += p
		bins[idx].n++
		if e.OutcomeWon {
			bins[idx].wins++
		}
	}

	var out []types.CalibrationBin
	for i, b := range bins {
		if b.n == 0 {
			continue
		}
		out = append(out, types.CalibrationBin{
			BinLower:      float64(i) / numBins,
			BinUpper:      float64(i+1) / numBins,
			N:             b.n,
			MeanPredicted: b.sumPred / float64(b.n),
			ObservedRate:  float64(b.wins) / float64(b.n),
		})
	}
	return out
}
