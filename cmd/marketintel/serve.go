package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/httpapi"
	"github.com/sawpanic/marketintel/internal/httpapi/handlers"
	"github.com/sawpanic/marketintel/internal/monitor"
	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the research HTTP/JSON API and the strategy monitor loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if port != 0 {
				cfg.HTTP.Port = port
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override the configured HTTP port")
	return cmd
}

func runServe(cfg config.Config) error {
	a, cleanup, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	repo := a.db.Repository()
	if repo != nil {
		// A job can never legitimately still be "running" across a
		// process restart (§7 JobFailure policy).
		if err := repo.BackfillJobs.FailStaleRunning(context.Background(), "process restarted"); err != nil {
			log.Warn().Err(err).Msg("failed to sweep stale backfill jobs")
		}
		if err := repo.OptimJobs.FailStaleRunning(context.Background(), "process restarted"); err != nil {
			log.Warn().Err(err).Msg("failed to sweep stale optimization jobs")
		}
	}

	h := handlers.New(a.research, repo, cfg, newBackfillTrigger(a), newOptimizeTrigger(a))

	serverCfg := httpapi.ServerConfig{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutS) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutS) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	server, err := httpapi.NewServer(serverCfg, h)
	if err != nil {
		return fmt.Errorf("starting http server: %w", err)
	}

	stopMonitors := startMonitorLoops(a, repo)
	defer stopMonitors()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}

// startMonitorLoops runs one monitor.Loop per active strategy in the
// warehouse and returns a function that stops them all. With no
// warehouse configured there is nothing to monitor.
func startMonitorLoops(a *app, repo *persistence.Repository) func() {
	if repo == nil {
		return func() {}
	}
	strategies, err := repo.Strategies.ListActive(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("failed to list active strategies; monitor loops not started")
		return func() {}
	}

	series := newWinRateSeries(a.research)
	sink := newAlertSink(repo)

	loops := make([]*monitor.Loop, 0, len(strategies))
	for _, s := range strategies {
		loop := monitor.NewLoop(s)
		loops = append(loops, loop)
		go loop.Run(a.cfg.Monitor, a.research, series, sink)
		log.Info().Str("strategy_id", s.StrategyID).Str("name", s.Name).Msg("monitor loop started")
	}

	return func() {
		for _, l := range loops {
			l.Stop()
		}
	}
}

func newBackfillTrigger(a *app) handlers.BackfillTrigger {
	return func(ctx context.Context, ac types.AnalysisConfig) (*types.BackfillJob, error) {
		repo := a.db.Repository()
		job := &types.BackfillJob{
			ID:        newJobID(),
			JobType:   "backfill",
			Status:    types.JobPending,
			StartedAt: time.Now().UTC(),
			Config:    ac,
		}
		if err := repo.BackfillJobs.Create(ctx, *job); err != nil {
			return nil, err
		}
		httpapi.BackfillJobsGauge.WithLabelValues(string(types.JobPending)).Inc()

		go func() {
			bgCtx := context.Background()
			err := a.research.Backfill(bgCtx, job, newMarketSource(a.market), newTradeHistorySource(repo, a.explorer), newEventSink(repo))
			if err != nil {
				log.Error().Err(err).Str("job_id", job.ID).Msg("backfill run failed")
			}
			if updErr := repo.BackfillJobs.Update(bgCtx, *job); updErr != nil {
				log.Error().Err(updErr).Str("job_id", job.ID).Msg("failed to persist backfill job status")
			}
			httpapi.BackfillJobsGauge.WithLabelValues(string(types.JobPending)).Dec()
			httpapi.BackfillJobsGauge.WithLabelValues(string(job.Status)).Inc()
		}()

		return job, nil
	}
}

func newOptimizeTrigger(a *app) handlers.OptimizeTrigger {
	return func(ctx context.Context, gs types.GridSearchConfig) (*types.OptimizationJob, error) {
		repo := a.db.Repository()
		job := &types.OptimizationJob{
			ID:           newJobID(),
			Status:       types.JobPending,
			Config:       gs,
			TotalConfigs: research.GridConfigCount(gs),
			StartedAt:    time.Now().UTC(),
		}
		if err := repo.OptimJobs.Create(ctx, *job); err != nil {
			return nil, err
		}
		httpapi.OptimizationJobsGauge.WithLabelValues(string(types.JobPending)).Inc()

		go func() {
			runOptimizationJob(a, repo, job, gs)
			httpapi.OptimizationJobsGauge.WithLabelValues(string(types.JobPending)).Dec()
			httpapi.OptimizationJobsGauge.WithLabelValues(string(job.Status)).Inc()
		}()

		return job, nil
	}
}
