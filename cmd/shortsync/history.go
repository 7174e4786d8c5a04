package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shortsync/shortsync/internal/config"
	"github.com/shortsync/shortsync/internal/db"
	"github.com/shortsync/shortsync/internal/ledger"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs from the local history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		if cfg.History.Path == "" {
			return fmt.Errorf("history is disabled: set history.path in the manifest")
		}

		database, err := db.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := ledger.New(database.DB).Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No sync runs recorded yet")
			return nil
		}

		for _, run := range runs {
			mode := "sync"
			if run.DryRun {
				mode = "dry-run"
			}
			fmt.Printf("%s  %-7s  +%d ~%d -%d  errors=%d  %s\n",
				run.StartedAt.Format(time.RFC3339), mode,
				run.Created, run.Updated, run.Deleted, len(run.Errors), run.RunID)
			for _, e := range run.Errors {
				fmt.Printf("    %s\n", e)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
}
