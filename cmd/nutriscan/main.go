package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutriscan/internal/config"
	"github.com/vbonduro/nutriscan/internal/db"
	"github.com/vbonduro/nutriscan/internal/logging"
	"github.com/vbonduro/nutriscan/internal/photostore/local"
	"github.com/vbonduro/nutriscan/internal/service"
	"github.com/vbonduro/nutriscan/internal/store"
	"github.com/vbonduro/nutriscan/internal/web"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "nutriscan",
		Short:         "Meal photo nutrition diary",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default ./.env if present)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(productsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is what every command needs: configuration, a logger and the database.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *sql.DB
	cleanup  func()
}

func openApp() (*app, error) {
	var files []string
	if envFile != "" {
		files = []string{envFile}
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	logger, cleanupLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		cleanupLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		cleanup: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
			cleanupLog()
		},
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.cleanup()

			if err := a.cfg.Validate(); err != nil {
				return err
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			est, err := newEstimator(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}

			photos, err := local.New(a.cfg.PhotoPath)
			if err != nil {
				return fmt.Errorf("failed to initialize photo store: %w", err)
			}

			diary := service.NewDiary(store.NewEntryStore(a.database), a.logger)
			if err := diary.Load(cmd.Context()); err != nil {
				return err
			}
			catalog := service.NewCatalog(store.NewProductStore(a.database), est, a.logger)

			server := web.NewServer(web.Deps{
				Diary:     diary,
				Capture:   service.NewCapture(est, catalog, diary, photos, a.logger),
				Catalog:   catalog,
				Dashboard: service.NewDashboard(diary),
				Photos:    photos,
				Location:  loc,
			}, a.logger)
			return server.ListenAndServe(a.cfg.ListenAddr)
		},
	}
}

// loadDiary opens the diary for the read-only commands.
func loadDiary(ctx context.Context, a *app) (*service.Diary, error) {
	diary := service.NewDiary(store.NewEntryStore(a.database), a.logger)
	if err := diary.Load(ctx); err != nil {
		return nil, err
	}
	return diary, nil
}
