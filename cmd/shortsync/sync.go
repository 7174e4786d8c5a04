package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shortsync/shortsync/internal/config"
	"github.com/shortsync/shortsync/internal/db"
	"github.com/shortsync/shortsync/internal/ledger"
	"github.com/shortsync/shortsync/internal/reconcile"
	"github.com/shortsync/shortsync/internal/shortio"
)

var dryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch remote link state, diff against the manifest, apply changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		setupLogging(cfg.Log.GetLevel(), cfg.Log.UseJSON, cfg.Log.Colors)

		desired, err := cfg.DesiredSet()
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := shortio.NewClient(cfg.APIKey, cfg.Timeout.Duration(), cfg.RateLimitRPS)
		defer client.Close()

		syncer := reconcile.NewSyncer(client, cfg.ManagedTag)

		runID := uuid.NewString()
		startedAt := time.Now()
		log.Info().
			Str("run_id", runID).
			Int("domains", len(desired.Domains())).
			Int("links", desired.Len()).
			Bool("dry_run", dryRun).
			Msg("Starting sync")

		diff, err := syncer.ComputeDiff(ctx, desired)
		if err != nil {
			return err
		}
		log.Info().
			Str("run_id", runID).
			Int("create", len(diff.Create)).
			Int("update", len(diff.Update)).
			Int("delete", len(diff.Delete)).
			Msg("Diff computed")

		res := syncer.Execute(ctx, diff, dryRun)

		fmt.Print(reconcile.FormatSummary(res, dryRun))

		if cfg.History.Path != "" {
			run := ledger.Run{
				RunID:     runID,
				StartedAt: startedAt,
				DryRun:    dryRun,
				Created:   res.Created,
				Updated:   res.Updated,
				Deleted:   res.Deleted,
				Errors:    res.Errors,
			}
			if err := recordRun(cfg.History.Path, run); err != nil {
				log.Warn().Err(err).Msg("Failed to record run history")
			}
		}

		if err := writeActionOutputs(res); err != nil {
			log.Warn().Err(err).Msg("Failed to write action outputs")
		}

		if len(res.Errors) > 0 {
			return fmt.Errorf("sync finished with %d failed operations", len(res.Errors))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report intended changes without applying them")
}

func recordRun(path string, run ledger.Run) error {
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	return ledger.New(database.DB).Record(run)
}

// writeActionOutputs publishes result counts as GitHub Actions step
// outputs when running inside a workflow.
func writeActionOutputs(res reconcile.Result) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "created=%d\nupdated=%d\ndeleted=%d\nerrors=%d\n",
		res.Created, res.Updated, res.Deleted, len(res.Errors))
	return err
}
