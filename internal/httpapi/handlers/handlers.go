// Package handlers implements the HTTP/JSON API routes of spec.md §6
// against a research.Engine and the warehouse repositories. Handlers
// never import the postgres/cache packages directly: they depend on
// the persistence.Repository interface aggregate (nil fields mean
// that table's storage is unavailable) and on injected trigger
// functions for the two asynchronous POST routes, mirroring the
// EventSource injection seam research.Engine already uses to stay
// independent of its data source.
package handlers

import (
	"context"
	"net/http"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// BackfillTrigger starts a backfill job asynchronously (persisting the
// job row itself) and returns the freshly-created job record.
type BackfillTrigger func(ctx context.Context, ac types.AnalysisConfig) (*types.BackfillJob, error)

// OptimizeTrigger starts a grid-search optimization job asynchronously
// and returns the freshly-created job record.
type OptimizeTrigger func(ctx context.Context, gs types.GridSearchConfig) (*types.OptimizationJob, error)

// Handlers bundles everything the routes need. Repo is nil when the
// warehouse is disabled/unreachable (internal/infrastructure/db's
// disabled Manager); handlers degrade GETs to empty shapes and POSTs
// to 503 in that case, per §7's StorageUnavailable policy.
type Handlers struct {
	Engine   *research.Engine
	Repo     *persistence.Repository
	Cfg      config.Config
	Backfill BackfillTrigger
	Optimize OptimizeTrigger
}

// New wires a Handlers bundle. repo may be nil.
func New(eng *research.Engine, repo *persistence.Repository, cfg config.Config, backfill BackfillTrigger, optimize OptimizeTrigger) *Handlers {
	return &Handlers{Engine: eng, Repo: repo, Cfg: cfg, Backfill: backfill, Optimize: optimize}
}

func (h *Handlers) storageAvailable() bool { return h.Repo != nil }

// Health reports liveness only; it never touches storage so it stays
// accurate even when the warehouse is down.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound matches the teacher's 404 handler shape.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
