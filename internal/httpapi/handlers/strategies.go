package handlers

import (
	"net/http"

	"github.com/sawpanic/marketintel/internal/types"
)

// Strategies implements
// `GET /api/analysis/strategies?sortBy&limit<=100&significantOnly`:
// monitored strategies ranked by the requested metric.
func (h *Handlers) Strategies(w http.ResponseWriter, r *http.Request) {
	if !h.storageAvailable() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"strategies": []types.MonitoredStrategy{}})
		return
	}

	q := r.URL.Query()
	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = "roi"
	}
	limit := clampLimit(r, 20, 100)
	significantOnly, _ := queryBool(q, "significantOnly")

	strategies, err := h.Repo.Strategies.ListRanked(r.Context(), sortBy, limit, significantOnly)
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"strategies": strategies})
}

// Alerts implements
// `GET /api/analysis/alerts?severity&unacknowledgedOnly&limit<=200`.
func (h *Handlers) Alerts(w http.ResponseWriter, r *http.Request) {
	if !h.storageAvailable() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": []types.DriftAlert{}})
		return
	}

	q := r.URL.Query()
	severity := types.AlertSeverity(q.Get("severity"))
	unacknowledgedOnly, _ := queryBool(q, "unacknowledgedOnly")
	limit := clampLimit(r, 50, 200)

	alerts, err := h.Repo.Alerts.List(r.Context(), severity, unacknowledgedOnly, limit)
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}
