package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dukerupert/habiti/internal/config"
	"github.com/dukerupert/habiti/internal/database"
	"github.com/dukerupert/habiti/internal/dating"
	"github.com/dukerupert/habiti/internal/logging"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
	"github.com/dukerupert/habiti/internal/tracker"
)

var (
	// configFile is set by the --config flag.
	configFile string

	v = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "habiti",
	Short: "Habiti is a gamified habit tracker",
	Long: `Habiti tracks good and bad habits day by day, turns completions into
points, levels and achievements, and keeps everything in a local SQLite file.

Settings come from flags, HABITI_* environment variables and an optional
habiti.yaml, in that order of precedence.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: ./habiti.yaml)")
	pf.String("db", "", "SQLite database path (env HABITI_DB_PATH)")
	pf.String("log-level", "", "debug, info, warn or error (env HABITI_LOG_LEVEL)")
	pf.String("log-format", "", "text or json (env HABITI_LOG_FORMAT)")
	v.BindPFlag(config.KeyDBPath, pf.Lookup("db"))
	v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importCSVCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
}

// app is the wiring shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB
	slots   *store.SlotStore
	tracker *tracker.Tracker
	dating  *dating.Service
}

// openApp loads config, opens the database and loads tracker and mini-game
// state. Options are passed through to the tracker. The caller must Close.
func openApp(ctx context.Context, opts ...tracker.Option) (*app, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	slots := store.NewSlotStore(db)
	svc := dating.NewService(slots, logger)
	svc.Load(ctx)

	base := []tracker.Option{
		tracker.WithLogger(logger),
		tracker.WithStatusFunc(func(ctx context.Context, h model.Habit, s model.Status) {
			svc.HabitStatusChanged(ctx, h, s)
		}),
	}
	tr := tracker.New(slots, cfg.Tracker, append(base, opts...)...)
	tr.Load(ctx)

	return &app{cfg: cfg, logger: logger, db: db, slots: slots, tracker: tr, dating: svc}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
