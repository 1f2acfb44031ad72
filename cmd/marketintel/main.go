// Command marketintel runs the contrarian-signal research and
// monitoring core of spec.md: the HTTP/JSON API, one-shot backfill and
// grid-search optimization runs, the strategy health monitor, and a
// terminal report over the latest optimization job.
//
// Grounded on the teacher's cmd/cryptorun/main.go bootstrap: zerolog
// console writer on stderr, a cobra root command, and one subcommand
// per operation rather than the teacher's TTY-detected interactive
// menu (this domain has no scan-now-or-menu split to preserve).
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketintel/internal/config"
)

const appName = "marketintel"

var cfgPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := &cobra.Command{
		Use:     appName,
		Short:   "Contrarian-signal research, optimization, and strategy monitoring",
		Version: "v0.1.0",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (defaults honored when omitted)")

	root.AddCommand(
		newServeCmd(),
		newBackfillCmd(),
		newOptimizeCmd(),
		newMonitorCmd(),
		newReportCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("marketintel exited with error")
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}
	return cfg
}

func logWarnClose(component string, err error) {
	log.Warn().Err(err).Str("component", component).Msg("error closing resource during shutdown")
}
