package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"reader-sync/core/config"
	"reader-sync/core/database"
	"reader-sync/core/loader"
	"reader-sync/core/logger"
	"reader-sync/core/middleware/auth"
	"reader-sync/core/middleware/rayid"
	"reader-sync/core/remote"
	"reader-sync/core/storage"

	"reader-sync/feature/archive"
	"reader-sync/feature/readinglist"
	"reader-sync/feature/talkpage"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync service",
	Long:  `Starts the HTTP server, the background sync engine, and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open the local store
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open database", zap.Error(err))
		}

		listStore := readinglist.NewStore(db)
		if err := listStore.AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate reading list schema", zap.Error(err))
		}
		pageStore := talkpage.NewStore(db)
		if err := pageStore.AutoMigrate(); err != nil {
			logg.Fatal("Failed to migrate talk page schema", zap.Error(err))
		}

		// 4. Remote transport shared by all features
		remoteClient := remote.NewClient(cfg.Remote)

		// 5. Sync engine and services
		engine := readinglist.NewEngine(listStore, readinglist.NewHTTPClient(remoteClient), logg, cfg.Sync)
		listService := readinglist.NewService(listStore, engine, logg)
		pageController := talkpage.NewController(pageStore, talkpage.NewHTTPClient(remoteClient), logg)

		// 6. Archive storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		archiveService := archive.NewService(listStore, store, cfg.Storage.Bucket, logg)

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 8. Feature Loader
		mgr := loader.NewManager()
		mgr.Register(readinglist.NewFeature(listService))
		mgr.Register(talkpage.NewFeature(pageController, talkpage.NewHandler(pageController, logg)))
		mgr.Register(archive.NewFeature(archiveService, archive.NewHandler(archiveService, logg)))

		// Middleware Registration
		// RayID first so every request is traceable
		app.Use(rayid.New())

		// Request logging with Zap + RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth protects the whole API
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start the background sync engine
		listService.Start()

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown: stop taking requests, then let the in-flight
		// sync cycle finish.
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		listService.Stop()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
