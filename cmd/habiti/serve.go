package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/config"
	"github.com/dukerupert/habiti/internal/server"
	"github.com/dukerupert/habiti/internal/store"
	"github.com/dukerupert/habiti/internal/tracker"
	ws "github.com/dukerupert/habiti/internal/websocket"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and change feed",
	Long: `Serve runs the JSON API, the websocket change feed on /ws and, when S3
settings are present, the scheduled backup uploader. It stops cleanly on
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env HABITI_PORT)")
	v.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub exists before the tracker so loads and imports are broadcast.
	hub := ws.NewHub(nil)
	a, err := openApp(ctx, tracker.WithChangeFunc(hub.Notify))
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	backupMgr := backup.NewManager(a.cfg.Backup, store.NewBackupStore(a.db), a.tracker, logger, func(s backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", string(s.State), "", map[string]any{
			"in_progress": s.InProgress,
			"error":       s.Error,
		}))
	})
	if !backupMgr.Enabled() {
		logger.Info("remote backups disabled", "reason", "no S3 bucket or credentials")
	}

	srv := server.New(a.tracker, a.dating, backupMgr, hub, server.Options{
		AllowedOrigins: a.cfg.AllowedOrigins,
	}, logger)

	httpServer := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("habiti listening", "addr", httpServer.Addr, "db", a.cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})
	g.Go(func() error {
		return backupMgr.Run(gctx)
	})
	g.Go(func() error {
		srv.RateLimiter().RunCleanup(gctx, limiterSweep)
		return nil
	})

	return g.Wait()
}
