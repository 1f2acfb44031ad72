package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sawpanic/marketintel/internal/apperrors"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// Optimize implements `POST /api/analysis/optimize`: body is a partial
// GridSearchConfig; responds 202 with the created job plus the total
// combination count.
func (h *Handlers) Optimize(w http.ResponseWriter, r *http.Request) {
	if h.Optimize == nil || !h.storageAvailable() {
		writeError(w, http.StatusServiceUnavailable, "warehouse unavailable")
		return
	}

	var gs types.GridSearchConfig
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&gs); err != nil {
			writeErrFromErr(w, &apperrors.InvalidInput{Field: "body", Reason: err.Error()})
			return
		}
	}

	job, err := h.Optimize(r.Context(), gs)
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job":        job,
		"totalConfigs": research.GridConfigCount(gs),
	})
}

// OptimizeStatus implements `GET /api/analysis/optimize/status?jobId?`.
// With no jobId it returns the latest job; 404 when none is found.
func (h *Handlers) OptimizeStatus(w http.ResponseWriter, r *http.Request) {
	if !h.storageAvailable() {
		writeError(w, http.StatusNotFound, "no optimization job found")
		return
	}

	jobID := r.URL.Query().Get("jobId")
	var job *types.OptimizationJob
	var err error
	if jobID != "" {
		job, err = h.Repo.OptimJobs.GetByID(r.Context(), jobID)
	} else {
		job, err = h.Repo.OptimJobs.Latest(r.Context())
	}
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "no optimization job found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Pareto implements `GET /api/analysis/pareto?objectives=a,b,c`: the
// Pareto frontier of the latest optimization job's results, recomputed
// against the requested objective set.
func (h *Handlers) Pareto(w http.ResponseWriter, r *http.Request) {
	if !h.storageAvailable() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"points": []types.OptimizationResult{}})
		return
	}

	objectivesRaw := r.URL.Query().Get("objectives")
	var objectives []string
	if objectivesRaw != "" {
		objectives = strings.Split(objectivesRaw, ",")
	} else {
		objectives = []string{"roi", "sharpe_ratio", "profit_factor"}
	}

	job, err := h.Repo.OptimJobs.Latest(r.Context())
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	if job == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"points": []types.OptimizationResult{}})
		return
	}

	results, err := h.Repo.OptimResults.ListByJob(r.Context(), job.ID)
	if err != nil {
		writeErrFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": research.ParetoFrontier(results, objectives)})
}

type sensitivityRequest struct {
	BaseConfig types.AnalysisConfig  `json:"baseConfig"`
	Parameter  string                `json:"parameter"`
	Values     []interface{}         `json:"values"`
}

// Sensitivity implements `POST /api/analysis/sensitivity`.
func (h *Handlers) Sensitivity(w http.ResponseWriter, r *http.Request) {
	var body sensitivityRequest
	if r.Body == nil {
		writeErrFromErr(w, &apperrors.InvalidInput{Field: "body", Reason: "empty request body"})
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrFromErr(w, &apperrors.InvalidInput{Field: "body", Reason: err.Error()})
		return
	}

	points, err := h.Engine.SensitivityAnalysis(body.BaseConfig, body.Parameter, body.Values)
	if err != nil {
		writeErrFromErr(w, &apperrors.InvalidInput{Field: "parameter", Reason: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}
