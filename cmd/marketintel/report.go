package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sawpanic/marketintel/internal/types"
)

func newReportCmd() *cobra.Command {
	var jobID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a table of the latest optimization job's top results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := a.db.Repository()
			if repo == nil {
				return fmt.Errorf("report requires a configured warehouse (warehouse_dsn)")
			}

			ctx := context.Background()
			var job *types.OptimizationJob
			if jobID != "" {
				job, err = repo.OptimJobs.GetByID(ctx, jobID)
			} else {
				job, err = repo.OptimJobs.Latest(ctx)
			}
			if err != nil {
				return fmt.Errorf("loading job: %w", err)
			}
			if job == nil {
				fmt.Println("no optimization job found")
				return nil
			}

			results, err := repo.OptimResults.ListParetoOptimal(ctx, job.ID)
			if err != nil {
				return fmt.Errorf("loading results: %w", err)
			}

			fmt.Printf("optimization job %s: %s, %s/%s configs evaluated\n",
				job.ID, job.Status, humanize.Comma(int64(job.ProcessedConfigs)), humanize.Comma(int64(job.TotalConfigs)))

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"mode", "min size", "window", "n", "win rate", "roi", "sharpe", "pnl"})
			for _, r := range results {
				table.Append([]string{
					string(r.Config.ContrarianMode),
					humanize.FormatFloat("#,###.##", r.Config.MinSizeUSD),
					fmt.Sprintf("%dm", r.Config.WindowMinutes),
					humanize.Comma(int64(r.Metrics.N)),
					fmt.Sprintf("%.1f%%", r.Metrics.WinRate*100),
					fmt.Sprintf("%.1f%%", r.Metrics.ROI*100),
					fmt.Sprintf("%.2f", r.Metrics.SharpeRatio),
					decimal.NewFromFloat(r.Metrics.PnL).Round(2).String(),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job-id", "", "report on a specific job instead of the latest")
	return cmd
}
