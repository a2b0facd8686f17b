// File: cmd/history.go
package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
	"github.com/xkilldash9x/cyberhealth-cli/internal/observability"
	"github.com/xkilldash9x/cyberhealth-cli/internal/store"
)

// newHistoryCmd lists previous scans of a project from the history database.
func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history [project]",
		Short: "Shows the score trend of previous scans for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			if cfg.Database.URL == "" {
				return fmt.Errorf("scan history requires a database (set CYBERHEALTH_DATABASE_URL)")
			}

			pool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			dbStore, err := store.New(ctx, pool, logger)
			if err != nil {
				return err
			}

			history, err := dbStore.History(ctx, args[0], limit)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Printf("No scans recorded for %q.\n", args[0])
				return nil
			}

			fmt.Printf("%-38s %-22s %7s %8s %9s\n", "SCAN ID", "WHEN", "SCORE", "POINTS", "FINDINGS")
			for _, scan := range history {
				fmt.Printf("%-38s %-22s %7d %8d %9d\n",
					scan.ScanID,
					scan.Timestamp.Local().Format("2006-01-02 15:04:05"),
					scan.Score, scan.Points, scan.Findings)
			}
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of scans to list.")
	return historyCmd
}
