package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run one grid-search optimization pass synchronously and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := a.db.Repository()
			if repo == nil {
				return fmt.Errorf("optimize requires a configured warehouse (warehouse_dsn)")
			}

			gs := defaultGridSearchConfig(cfg.Research)
			job := &types.OptimizationJob{
				ID:           newJobID(),
				Status:       types.JobPending,
				Config:       gs,
				TotalConfigs: research.GridConfigCount(gs),
				StartedAt:    time.Now().UTC(),
			}
			if err := repo.OptimJobs.Create(context.Background(), *job); err != nil {
				return fmt.Errorf("recording job: %w", err)
			}

			runOptimizationJob(a, repo, job, gs)
			if job.Status == types.JobFailed {
				return fmt.Errorf("optimization run failed: %s", job.ErrorMessage)
			}
			log.Info().
				Str("job_id", job.ID).
				Int("valid_configs", job.ValidConfigs).
				Int64("execution_time_ms", job.ExecutionTimeMS).
				Msg("optimization complete")
			return nil
		},
	}
	return cmd
}

// defaultGridSearchConfig seeds a reasonably broad grid over the
// contrarian mode and size/window filters, the way the teacher's
// backtest/smoke90 command seeds a default parameter sweep.
func defaultGridSearchConfig(cfg config.ResearchConfig) types.GridSearchConfig {
	return types.GridSearchConfig{
		ContrarianModes: []types.ContrarianMode{types.ModePriceOnly, types.ModeVsTrend, types.ModeVsOFI, types.ModeVsBoth},
		MinSizeUSDs:     []float64{500, 1000, 2500, 5000},
		WindowMinutes:   []int{15, 30, 60},
		OutcomeFilters:  []string{"all"},
		MinSampleSize:   20,
		FDRAlpha:        cfg.DefaultFDRAlpha,
		Objectives:      []string{"roi", "sharpe_ratio", "profit_factor"},
	}
}

// runOptimizationJob runs the grid search in-process and persists the
// job's final state plus every evaluated result, shared by the
// synchronous `optimize` subcommand and serve's async OptimizeTrigger.
func runOptimizationJob(a *app, repo *persistence.Repository, job *types.OptimizationJob, gs types.GridSearchConfig) {
	ctx := context.Background()
	job.Status = types.JobRunning
	start := time.Now()

	results := a.research.GridSearch(gs)

	job.ProcessedConfigs = len(results)
	job.ValidConfigs = len(results)
	job.ExecutionTimeMS = time.Since(start).Milliseconds()
	completed := time.Now().UTC()
	job.CompletedAt = &completed
	job.Status = types.JobCompleted

	if _, err := repo.OptimResults.UpsertBatch(ctx, job.ID, results); err != nil {
		job.Status = types.JobFailed
		job.ErrorMessage = err.Error()
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist optimization results")
	}
	if err := repo.OptimJobs.Update(ctx, *job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist optimization job status")
	}
}
