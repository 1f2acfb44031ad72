package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sawpanic/marketintel/internal/types"
)

// parseAnalysisConfig builds an AnalysisConfig from the query options
// enumerated in §6: days, minSize, windowMinutes, contrarianMode,
// requireAsymmetry, requireNewWallet, maxWalletAgeDays, maxSpreadBps,
// minDepthUsd, categories, outcomeFilter, minPrice, maxPrice,
// minZScore, maxZScore, minMinutes. Any option left unset keeps its
// DefaultAnalysisConfig value. An unrecognized contrarianMode falls
// back to vs_ofi rather than erroring.
func parseAnalysisConfig(r *http.Request) types.AnalysisConfig {
	ac := types.DefaultAnalysisConfig()
	q := r.URL.Query()

	if v, ok := queryInt(q, "days"); ok {
		ac.LookbackDays = v
	}
	if v, ok := queryFloat(q, "minSize"); ok {
		ac.MinSizeUSD = v
	}
	if v, ok := queryInt(q, "windowMinutes"); ok {
		ac.WindowMinutes = v
	}
	if v := q.Get("contrarianMode"); v != "" {
		ac.ContrarianMode = normalizeContrarianMode(v)
	}
	if v, ok := queryBool(q, "requireAsymmetry"); ok {
		ac.RequireAsymmetricBook = v
	}
	if v, ok := queryBool(q, "requireNewWallet"); ok {
		ac.RequireNewWallet = v
	}
	if v, ok := queryFloat(q, "maxWalletAgeDays"); ok {
		ac.MaxWalletAgeDays = v
	}
	if v, ok := queryFloat(q, "maxSpreadBps"); ok {
		ac.MaxSpreadBps = v
	}
	if v, ok := queryFloat(q, "minDepthUsd"); ok {
		ac.MinDepthUSD = v
	}
	if v := q.Get("categories"); v != "" {
		ac.Categories = strings.Split(v, ",")
	}
	if v := q.Get("outcomeFilter"); v == "Yes" || v == "No" || v == "all" {
		ac.OutcomeFilter = v
	}
	if v, ok := queryFloat(q, "minPrice"); ok {
		ac.MinPrice = v
	}
	if v, ok := queryFloat(q, "maxPrice"); ok {
		ac.MaxPrice = v
	}
	if v, ok := queryFloat(q, "minZScore"); ok {
		ac.MinZScore = v
	}
	if v, ok := queryFloat(q, "maxZScore"); ok {
		ac.MaxZScore = v
	}
	if v, ok := queryFloat(q, "minMinutes"); ok {
		ac.MinTTCMinutes = v
	}
	return ac
}

func normalizeContrarianMode(v string) types.ContrarianMode {
	switch types.ContrarianMode(v) {
	case types.ModePriceOnly, types.ModeVsTrend, types.ModeVsOFI, types.ModeVsBoth:
		return types.ContrarianMode(v)
	default:
		return types.ModeVsOFI
	}
}

func queryInt(q map[string][]string, key string) (int, bool) {
	raw := first(q, key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryFloat(q map[string][]string, key string) (float64, bool) {
	raw := first(q, key)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func queryBool(q map[string][]string, key string) (bool, bool) {
	raw := first(q, key)
	if raw == "" {
		return false, false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return b, true
}

func first(q map[string][]string, key string) string {
	vals, ok := q[key]
	if !ok || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// clampLimit enforces the per-route upper bound named in §6 (events
// <=100, strategies <=100, alerts <=200), defaulting to def when the
// query omits the parameter or supplies a non-positive value.
func clampLimit(r *http.Request, def, max int) int {
	q := r.URL.Query()
	n, ok := queryInt(q, "limit")
	if !ok || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
