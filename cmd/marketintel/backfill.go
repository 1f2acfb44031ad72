package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketintel/internal/types"
)

// newJobID mints a short random job identifier, the way the teacher
// mints scan-run IDs ahead of a warehouse-assigned primary key.
func newJobID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func newBackfillCmd() *cobra.Command {
	var days, windowMinutes int
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run one backfill pass synchronously and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := a.db.Repository()
			if repo == nil {
				return fmt.Errorf("backfill requires a configured warehouse (warehouse_dsn)")
			}

			ac := types.DefaultAnalysisConfig()
			if days > 0 {
				ac.LookbackDays = days
			}
			if windowMinutes > 0 {
				ac.WindowMinutes = windowMinutes
			}

			job := &types.BackfillJob{
				ID:        newJobID(),
				JobType:   "backfill",
				Status:    types.JobPending,
				StartedAt: time.Now().UTC(),
				Config:    ac,
			}
			ctx := context.Background()
			if err := repo.BackfillJobs.Create(ctx, *job); err != nil {
				return fmt.Errorf("recording job: %w", err)
			}

			runErr := a.research.Backfill(ctx, job, newMarketSource(a.market), newTradeHistorySource(repo, a.explorer), newEventSink(repo))
			if updErr := repo.BackfillJobs.Update(ctx, *job); updErr != nil {
				log.Error().Err(updErr).Msg("failed to persist backfill job status")
			}
			if runErr != nil {
				return fmt.Errorf("backfill: %w", runErr)
			}

			log.Info().
				Str("job_id", job.ID).
				Int("items_processed", job.ItemsProcessed).
				Int("items_total", job.ItemsTotal).
				Msg("backfill complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "lookback window in days (defaults to the configured analysis default)")
	cmd.Flags().IntVar(&windowMinutes, "window-minutes", 0, "pre-close trade window in minutes")
	return cmd
}
