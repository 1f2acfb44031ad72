package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// Summary implements `GET /api/analysis/summary`.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	ac := parseAnalysisConfig(r)
	writeJSON(w, http.StatusOK, h.Engine.CorrelationSummary(ac))
}

// signalView adds market/URL enrichment to a contrarian event, per
// §6's external-URL format contract. The warehouse schema carries no
// event/market slug, so the link falls back to the condition id.
type signalView struct {
	types.ContrarianEvent
	MarketURL string `json:"marketUrl,omitempty"`
}

func (h *Handlers) toSignalView(e types.ContrarianEvent) signalView {
	v := signalView{ContrarianEvent: e}
	if h.Cfg.MarketHost != "" {
		v.MarketURL = fmt.Sprintf("https://%s/event/%s", h.Cfg.MarketHost, e.ConditionID)
	}
	return v
}

// Signals implements `GET /api/analysis/signals?limit`: the most
// recent contrarian events, newest first.
func (h *Handlers) Signals(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r, 20, 100)
	ac := parseAnalysisConfig(r)
	events := h.Engine.Events(ac)

	sortEventsDescByTime(events)
	if len(events) > limit {
		events = events[:limit]
	}

	out := make([]signalView, len(events))
	for i, e := range events {
		out[i] = h.toSignalView(e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"signals": out})
}

func sortEventsDescByTime(events []types.ContrarianEvent) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].TradeTimestampMS > events[j-1].TradeTimestampMS; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

// Rolling implements `GET /api/analysis/rolling?rollingWindow`.
func (h *Handlers) Rolling(w http.ResponseWriter, r *http.Request) {
	ac := parseAnalysisConfig(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": h.Engine.RollingCorrelation(ac)})
}

// EventsPage implements `GET /api/analysis/events?limit<=100&offset`:
// paginated events plus the total matching count.
func (h *Handlers) EventsPage(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r, 20, 100)
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	ac := parseAnalysisConfig(r)
	events := h.Engine.Events(ac)
	total := len(events)

	var page []types.ContrarianEvent
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = events[offset:end]
	}

	out := make([]signalView, len(page))
	for i, e := range page {
		out[i] = h.toSignalView(e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": out, "total": total, "offset": offset, "limit": limit})
}

// Breakdown implements `GET /api/analysis/breakdown/{factor}`: 400 for
// a factor outside the fixed set of four.
func (h *Handlers) Breakdown(w http.ResponseWriter, r *http.Request) {
	factor := mux.Vars(r)["factor"]
	switch factor {
	case research.FactorLiquidity, research.FactorTimeToClose, research.FactorCategory, research.FactorNewWallet:
	default:
		writeError(w, http.StatusBadRequest, "unknown breakdown factor: "+factor)
		return
	}

	ac := parseAnalysisConfig(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": h.Engine.Breakdown(ac, factor)})
}

// Model implements `GET /api/analysis/model`: `{error, report:null}`
// when fewer than the minimum model events are available.
func (h *Handlers) Model(w http.ResponseWriter, r *http.Request) {
	ac := parseAnalysisConfig(r)
	report := h.Engine.ModelReport(ac)
	if report == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": "insufficient data for model report", "report": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"report": report})
}

// Compare implements `GET /api/analysis/compare?fdr`: FDR-adjusted
// comparison across all four contrarian modes.
func (h *Handlers) Compare(w http.ResponseWriter, r *http.Request) {
	ac := parseAnalysisConfig(r)
	fdrAlpha, _ := queryFloat(r.URL.Query(), "fdr")
	writeJSON(w, http.StatusOK, map[string]interface{}{"comparisons": h.Engine.Compare(ac, fdrAlpha)})
}
