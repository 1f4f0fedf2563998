package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/dating"
	"github.com/dukerupert/habiti/internal/handler"
	"github.com/dukerupert/habiti/internal/middleware"
	"github.com/dukerupert/habiti/internal/tracker"
	ws "github.com/dukerupert/habiti/internal/websocket"
)

// Per-client budget for the import and backup endpoints.
const (
	importLimit  = 10
	importWindow = time.Minute
)

type Options struct {
	// AllowedOrigins are the websocket origin patterns; empty accepts any.
	AllowedOrigins []string
}

type Server struct {
	tracker     *tracker.Tracker
	hub         *ws.Hub
	habitH      *handler.HabitHandler
	entryH      *handler.EntryHandler
	statsH      *handler.StatsHandler
	planH       *handler.PlanHandler
	transferH   *handler.TransferHandler
	backupH     *handler.BackupHandler
	datingH     *handler.DatingHandler
	rateLimiter *middleware.RateLimiter
	opts        Options
	logger      *slog.Logger
}

func New(tr *tracker.Tracker, datingSvc *dating.Service, backupMgr *backup.Manager, hub *ws.Hub, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tracker:     tr,
		hub:         hub,
		habitH:      handler.NewHabitHandler(tr),
		entryH:      handler.NewEntryHandler(tr),
		statsH:      handler.NewStatsHandler(tr),
		planH:       handler.NewPlanHandler(tr),
		transferH:   handler.NewTransferHandler(tr, logger.With("component", "transfer")),
		backupH:     handler.NewBackupHandler(backupMgr, tr, logger.With("component", "backup_handler")),
		datingH:     handler.NewDatingHandler(datingSvc, hub, logger.With("component", "dating_handler")),
		rateLimiter: middleware.NewRateLimiter(importLimit, importWindow),
		opts:        opts,
		logger:      logger,
	}
}

// RateLimiter exposes the import limiter so the caller can run its cleanup
// loop.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.opts.AllowedOrigins))

	s.registerRoutes(mux)

	httpLogger := s.logger.With("component", "http")
	return middleware.RequestLogger(httpLogger)(middleware.Recoverer(httpLogger)(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"today":   s.tracker.Today(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter)(h)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Habits
	mux.HandleFunc("GET /api/habits", s.habitH.List)
	mux.HandleFunc("POST /api/habits", s.habitH.Create)
	mux.HandleFunc("GET /api/habits/{id}", s.habitH.Get)
	mux.HandleFunc("PUT /api/habits/{id}", s.habitH.Update)
	mux.HandleFunc("DELETE /api/habits/{id}", s.habitH.Delete)
	mux.HandleFunc("GET /api/categories", s.habitH.Categories)

	// Entries
	mux.HandleFunc("GET /api/entries/{habit_id}", s.entryH.List)
	mux.HandleFunc("PUT /api/entries/{habit_id}/{date}", s.entryH.SetStatus)
	mux.HandleFunc("POST /api/entries/{habit_id}/{date}/toggle", s.entryH.Toggle)
	mux.HandleFunc("PUT /api/entries/{habit_id}/{date}/details", s.entryH.SetDetails)

	// Stats and game state
	mux.HandleFunc("GET /api/stats", s.statsH.Stats)
	mux.HandleFunc("GET /api/stats/calendar", s.statsH.Calendar)
	mux.HandleFunc("GET /api/achievements", s.statsH.Achievements)
	mux.HandleFunc("GET /api/preferences", s.statsH.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.statsH.UpdatePreferences)

	// Nightly plans
	mux.HandleFunc("GET /api/plans", s.planH.List)
	mux.HandleFunc("GET /api/plans/{date}", s.planH.Get)
	mux.HandleFunc("PUT /api/plans/{date}", s.planH.Put)
	mux.HandleFunc("DELETE /api/plans/{date}", s.planH.Delete)

	// Export / import
	mux.HandleFunc("GET /api/export", s.transferH.Export)
	mux.Handle("POST /api/import", s.rateLimited(s.transferH.Import))
	mux.Handle("POST /api/import/csv", s.rateLimited(s.transferH.ImportCSV))

	// Remote backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.Handle("POST /api/backups", s.rateLimited(s.backupH.Run))
	mux.Handle("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore))

	// Dating mini-game
	mux.HandleFunc("GET /api/dating/profiles", s.datingH.ListProfiles)
	mux.HandleFunc("POST /api/dating/profiles", s.datingH.CreateProfile)
	mux.HandleFunc("GET /api/dating/profiles/{id}", s.datingH.GetProfile)
	mux.HandleFunc("DELETE /api/dating/profiles/{id}", s.datingH.DeleteProfile)
	mux.HandleFunc("POST /api/dating/profiles/{id}/interactions", s.datingH.Interact)
	mux.HandleFunc("GET /api/dating/challenges", s.datingH.ListChallenges)
	mux.HandleFunc("POST /api/dating/challenges", s.datingH.CreateChallenge)
	mux.HandleFunc("GET /api/dating/tournaments", s.datingH.ListTournaments)
	mux.HandleFunc("POST /api/dating/tournaments", s.datingH.StartTournament)
	mux.HandleFunc("GET /api/dating/tournaments/{id}", s.datingH.GetTournament)
	mux.HandleFunc("POST /api/dating/tournaments/{id}/winner", s.datingH.RecordWinner)
	mux.HandleFunc("GET /api/dating/stats", s.datingH.Stats)
}
