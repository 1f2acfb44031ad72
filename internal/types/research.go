package types

import "time"

// ContrarianMode selects how "contrarian" is defined for an event.
// Any new mode must be added to both scoring and research paths (see
// DESIGN.md); an unrecognized mode in research defaults to VsBoth.
type ContrarianMode string

const (
	ModePriceOnly ContrarianMode = "price_only"
	ModeVsTrend   ContrarianMode = "vs_trend"
	ModeVsOFI     ContrarianMode = "vs_ofi"
	ModeVsBoth    ContrarianMode = "vs_both"
)

// WinningOutcome is Yes/No with the research-path casing; the
// decision path uses YES/NO casing internally and normalizes at the
// boundary (see DESIGN.md open-question note on casing).
type WinningOutcome string

const (
	OutcomeYes WinningOutcome = "Yes"
	OutcomeNo  WinningOutcome = "No"
)

// ResolvedMarket is a historical market whose final outcome prices
// are exactly [1,0] or [0,1] (string or numeric forms accepted at
// parse time). Rejected otherwise.
type ResolvedMarket struct {
	ConditionID    string
	Question       string
	EndDate        time.Time
	WinningOutcome WinningOutcome
	FinalYesPrice  float64
	FinalNoPrice   float64
	// YesTokenID/NoTokenID map the market's two outcome legs to their
	// CLOB token IDs, as returned by the resolved-markets feed
	// alongside outcomePrices. A trade's TokenID is compared against
	// these, not against WinningOutcome directly, to determine which
	// side it traded.
	YesTokenID TokenID
	NoTokenID  TokenID
}

// ContrarianEvent is a resolved historical trade augmented with
// contrarian flags. Unique by (ConditionID, TokenID, TradeTimestamp).
// Created during backfill; never mutated.
type ContrarianEvent struct {
	ID                string
	ConditionID       string
	TokenID           TokenID
	TradeTimestampMS  int64
	MinutesBeforeClose float64
	TradeSide         Side
	TradePrice        float64
	TradeSize         float64
	TradeNotional     float64
	TakerAddress      string

	SizePercentile float64
	SizeZScore     float64
	IsTailTrade    bool

	IsPriceContrarian bool
	PriceTrend30m     float64
	IsAgainstTrend    bool
	OFI30m            float64
	IsAgainstOFI      bool
	IsContrarian      bool

	BookImbalance     float64
	ThinOppositeRatio float64
	SpreadBps         float64
	IsAsymmetricBook  bool

	WalletAgeDays   float64
	WalletTradeCount int64
	IsNewWallet     bool

	TradedOutcome WinningOutcome
	OutcomeWon    bool
	Drift30m      float64
	Drift60m      float64

	Category string // carried for breakdown grouping
}

// IsContrarianByMode evaluates the predictor for a given mode. Any
// mode not in the enum falls back to ModeVsBoth (see DESIGN.md).
func (e ContrarianEvent) IsContrarianByMode(mode ContrarianMode) bool {
	switch mode {
	case ModePriceOnly:
		return e.IsPriceContrarian
	case ModeVsTrend:
		return e.IsAgainstTrend
	case ModeVsOFI:
		return e.IsAgainstOFI
	case ModeVsBoth:
		return e.IsContrarian
	default:
		return e.IsContrarian
	}
}

// JobStatus is shared by backfill and optimization jobs.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// BackfillJob tracks one backfill run end to end.
type BackfillJob struct {
	ID             string
	JobType        string
	Status         JobStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
	ItemsProcessed int
	ItemsTotal     int
	ErrorMessage   string
	Config         AnalysisConfig
}

// AnalysisConfig narrows the event set consumed by research
// computations (§4.D "Filters").
type AnalysisConfig struct {
	LookbackDays       int
	MinSizeUSD         float64
	WindowMinutes      int
	ContrarianMode     ContrarianMode
	RequireAsymmetricBook bool
	RequireNewWallet   bool
	MaxWalletAgeDays   float64
	MaxSpreadBps       float64
	MinDepthUSD        float64
	Categories         []string
	MinPrice           float64
	MaxPrice           float64
	MinTTCMinutes      float64
	MaxTTCMinutes      float64
	OutcomeFilter      string // "Yes" | "No" | "all"
	MinZScore          float64
	MaxZScore          float64
}

// DefaultAnalysisConfig mirrors the defaults implied by spec.md §4.D.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		LookbackDays:   90,
		MinSizeUSD:     0,
		WindowMinutes:  30,
		ContrarianMode: ModeVsOFI,
		MaxWalletAgeDays: 1e9,
		MaxSpreadBps:   1e9,
		MinDepthUSD:    0,
		MinPrice:       0,
		MaxPrice:       1,
		MinTTCMinutes:  0,
		MaxTTCMinutes:  1e9,
		OutcomeFilter:  "all",
		MinZScore:      -1e9,
		MaxZScore:      1e9,
	}
}

// PnLMetrics is the per-event-set P&L summary (§4.D).
type PnLMetrics struct {
	N               int
	WinRate         float64
	TotalWinPnL     float64
	TotalLossPnL    float64
	PnL             float64
	ROI             float64
	ProfitFactor    float64
	BreakEvenRate   float64
	EdgePoints      float64
	KellyFraction   float64
	HalfKelly       float64
	AvgPrice        float64
	IsProfitable    bool
	Warnings        []string
}

// CorrelationSummary is the point-biserial correlation + AUC + split
// report for a filtered event set (§4.D "Correlation summary").
type CorrelationSummary struct {
	N                int
	PointBiserialR   float64
	PValue           float64
	CILower          float64
	CIUpper          float64
	SignalWinRate    float64
	BaselineWinRate  float64
	Lift             float64
	AUC              float64
	Train            *SplitMetrics
	Validate         *SplitMetrics
	Test             *SplitMetrics
	PnL              PnLMetrics
}

// SplitMetrics is the correlation/AUC recomputed over one chronological
// split.
type SplitMetrics struct {
	N    int
	R    float64
	AUC  float64
}

// RollingCorrelationPoint is one daily-stepped window (§4.D "Rolling
// correlation").
type RollingCorrelationPoint struct {
	Date       time.Time
	R          float64
	WinRate    float64
	SampleSize int
	CILower    float64
	CIUpper    float64
}

// BreakdownGroup is one group in the factor breakdown (§4.D
// "Breakdown").
type BreakdownGroup struct {
	Factor     string
	Group      string
	N          int
	WinRate    float64
	Lift       float64
	CILower    float64
	CIUpper    float64
}

// ModelReport is the logistic-regression research report (§4.D
// "Model report"). Nil when fewer than 50 events are available.
type ModelReport struct {
	Coefficients      []float64
	FeatureNames      []string
	FeatureImportance []float64
	AUCTrain          float64
	AUCValidate       float64
	AUCTest           float64
	CalibrationCurve  []CalibrationBin
}

// CalibrationBin is one bin of the 10-bin calibration curve. Empty
// bins are filtered out (testable boundary behavior).
type CalibrationBin struct {
	BinLower     float64
	BinUpper     float64
	N            int
	MeanPredicted float64
	ObservedRate float64
}

// OptimizationResult is one evaluated grid-search configuration.
type OptimizationResult struct {
	ConfigID              string // hash of config
	Config                AnalysisConfig
	Metrics               OptimizationMetrics
	RankByObjective       map[string]int
	IsStatisticallySignificant bool
	IsParetoOptimal       bool
}

// OptimizationMetrics bundles the P&L metrics plus grid-search-only
// figures (Sharpe, information ratio, significance).
type OptimizationMetrics struct {
	N                 int
	WinRate           float64
	PnL               float64
	ROI               float64
	ProfitFactor      float64
	EdgePoints        float64
	SharpeRatio       float64
	KellyFraction     float64
	InformationRatio  float64
	PValue            float64
	AdjustedPValue    float64
	AvgPrice          float64
	BreakEvenRate     float64
	CILower           float64
	CIUpper           float64
}

// GridSearchConfig is the cartesian-product input to optimization.
type GridSearchConfig struct {
	ContrarianModes []ContrarianMode
	MinSizeUSDs     []float64
	WindowMinutes   []int
	PriceRanges     [][2]float64
	TTCRanges       [][2]float64
	OutcomeFilters  []string
	MinSampleSize   int
	FDRAlpha        float64
	Objectives      []string
}

// OptimizationJob mirrors the warehouse optimization_jobs table.
type OptimizationJob struct {
	ID                string
	Status            JobStatus
	Config            GridSearchConfig
	TotalConfigs      int
	ProcessedConfigs  int
	ValidConfigs      int
	StartedAt         time.Time
	CompletedAt       *time.Time
	ExecutionTimeMS   int64
	ErrorMessage      string
}

// SensitivityPoint is one value-variation of a single-parameter
// sensitivity analysis.
type SensitivityPoint struct {
	Value            interface{}
	Metrics          PnLMetrics
	DeltaROI         float64
	IsSignificant    bool // |delta roi| > 0.05
}

// MonitoredStrategy mirrors the warehouse monitored_strategies table.
type MonitoredStrategy struct {
	StrategyID        string // deterministic from config
	Name              string
	Description       string
	Config            AnalysisConfig
	BaselineMetrics   PnLMetrics
	BaselineDate      time.Time
	CurrentMetrics    PnLMetrics
	RecommendedKelly  float64
	IsActive          bool
	IsHealthy         bool
	LastCheckAt       time.Time
	CheckInterval     time.Duration
}

// AlertType enumerates the drift/performance/sample-size/kelly alerts
// a strategy monitor can emit.
type AlertType string

const (
	AlertDrift       AlertType = "drift"
	AlertPerformance AlertType = "performance"
	AlertSampleSize  AlertType = "sample_size"
	AlertKelly       AlertType = "kelly"
)

// AlertSeverity is info/warning/critical per §4.E thresholds.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// DriftAlert mirrors the warehouse drift_alerts table.
type DriftAlert struct {
	ID             string
	StrategyID     string
	AlertType      AlertType
	Metric         string
	Expected       float64
	Observed       float64
	DeviationSigma float64 // signed
	Severity       AlertSeverity
	Message        string
	Recommendation string
	Acknowledged   bool
	AcknowledgedAt *time.Time
	AcknowledgedBy string
	CreatedAt      time.Time
}
