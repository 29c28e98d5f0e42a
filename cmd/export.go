package cmd

import (
	"context"
	"fmt"

	"reader-sync/core/config"
	"reader-sync/core/database"
	"reader-sync/core/logger"
	"reader-sync/core/storage"
	"reader-sync/feature/archive"
	"reader-sync/feature/readinglist"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd writes a snapshot of all reading lists to object storage.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reading lists to archive storage",
	Long: `Writes a timestamped JSON snapshot of every reading list and its entries
to the configured archive bucket.`,
	RunE: runExport,
}

func init() {
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	service := archive.NewService(store, client, cfg.Storage.Bucket, l)
	objectName, err := service.Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	l.Info("Export complete", zap.String("object", objectName))
	return nil
}
