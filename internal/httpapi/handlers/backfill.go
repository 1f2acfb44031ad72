package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sawpanic/marketintel/internal/types"
)

type backfillRequest struct {
	Days          *int `json:"days"`
	WindowMinutes *int `json:"windowMinutes"`
}

// Backfill implements `POST /api/analysis/backfill`: 202 with the
// echoed (defaulted) config; the job itself runs asynchronously via
// h.Backfill.
func (h *Handlers) Backfill(w http.ResponseWriter, r *http.Request) {
	if h.Backfill == nil || !h.storageAvailable() {
		writeError(w, http.StatusServiceUnavailable, "warehouse unavailable")
		return
	}

	var body backfillRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // absent/empty body keeps defaults
	}

	ac := types.DefaultAnalysisConfig()
	if body.Days != nil {
		ac.LookbackDays = *body.Days
	}
	if body.WindowMinutes != nil {
		ac.WindowMinutes = *body.WindowMinutes
	}

	job, err := h.Backfill(r.Context(), ac)
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

type backfillStatusResponse struct {
	IsRunning      bool    `json:"isRunning"`
	Status         string  `json:"status"`
	ItemsProcessed int     `json:"itemsProcessed"`
	ItemsTotal     int     `json:"itemsTotal"`
	ErrorMessage   string  `json:"errorMessage"`
	LastRunAt      *string `json:"lastRunAt"`
}

// BackfillStatus implements `GET /api/analysis/backfill/status`. With
// no warehouse configured, or no job ever run, it returns the
// not-running empty shape rather than an error (§7: GETs degrade).
func (h *Handlers) BackfillStatus(w http.ResponseWriter, r *http.Request) {
	if !h.storageAvailable() {
		writeJSON(w, http.StatusOK, backfillStatusResponse{Status: string(types.JobPending)})
		return
	}

	job, err := h.Repo.BackfillJobs.Latest(r.Context())
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	if job == nil {
		writeJSON(w, http.StatusOK, backfillStatusResponse{Status: string(types.JobPending)})
		return
	}

	resp := backfillStatusResponse{
		IsRunning:      job.Status == types.JobRunning,
		Status:         string(job.Status),
		ItemsProcessed: job.ItemsProcessed,
		ItemsTotal:     job.ItemsTotal,
		ErrorMessage:   job.ErrorMessage,
	}
	if job.CompletedAt != nil {
		s := job.CompletedAt.UTC().Format(timeLayout)
		resp.LastRunAt = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
