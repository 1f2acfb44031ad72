package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run strategy health-check loops in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := a.db.Repository()
			if repo == nil {
				return fmt.Errorf("monitor requires a configured warehouse (warehouse_dsn)")
			}

			stop := startMonitorLoops(a, repo)
			defer stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("stopping monitor loops")
			return nil
		},
	}
}
