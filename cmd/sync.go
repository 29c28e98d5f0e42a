package cmd

import (
	"context"
	"fmt"

	"reader-sync/core/config"
	"reader-sync/core/database"
	"reader-sync/core/logger"
	"reader-sync/core/remote"
	"reader-sync/feature/readinglist"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fullSync bool

// syncCmd runs a single reconciliation cycle and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle and exit",
	Long: `Runs a single reconciliation cycle: pending local changes are pushed to
the remote service and remote changes since the last watermark are pulled
into the local store.

Examples:
  # Incremental sync from the stored watermark
  reader-sync sync

  # Force a full reconciliation
  reader-sync sync --full`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&fullSync, "full", false, "Ignore the watermark and reconcile everything")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	store := readinglist.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if fullSync {
		state, err := store.State()
		if err != nil {
			return err
		}
		if err := store.SetState(state.With(readinglist.NeedsSync)); err != nil {
			return err
		}
	}

	client := readinglist.NewHTTPClient(remote.NewClient(cfg.Remote))
	engine := readinglist.NewEngine(store, client, l, cfg.Sync)

	l.Info("Running sync cycle", zap.Bool("full", fullSync))
	if err := engine.RunCycle(ctx); err != nil {
		return fmt.Errorf("sync cycle failed: %w", err)
	}

	state, err := store.State()
	if err != nil {
		return err
	}
	l.Info("Sync cycle finished", zap.Stringer("state", state))
	return nil
}
