package main

import (
	"errors"
	"fmt"

	"github.com/fjd/job-scam-detector/internal/adapters/storage"
	"github.com/spf13/cobra"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the most recent HIGH RISK reports from PostgreSQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Sink != "postgres" {
			return errors.New("reports requires storage.sink postgres")
		}
		store, err := storage.NewPostgresStore(cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		reports, err := store.HighRisk(cmd.Context(), reportsLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch high-risk reports: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintln(out, "No high-risk reports")
			return nil
		}
		fmt.Fprintf(out, "=== %d High-Risk Reports ===\n", len(reports))
		for i, r := range reports {
			fmt.Fprintf(out, "%d. %s | %s | score %d | confidence %s\n",
				i+1, r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.FinalScore, r.Confidence)
			for _, reason := range r.Reasons {
				fmt.Fprintf(out, "     - %s\n", reason.Message)
			}
		}
		return nil
	},
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 10, "Maximum number of reports to list")
}
