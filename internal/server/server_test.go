package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/database"
	"github.com/dukerupert/habiti/internal/dating"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
	"github.com/dukerupert/habiti/internal/tracker"
	ws "github.com/dukerupert/habiti/internal/websocket"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := ws.NewHub(logger)
	slots := store.NewSlotStore(db)
	svc := dating.NewService(slots, logger)
	tr := tracker.New(slots, tracker.Config{},
		tracker.WithClock(func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }),
		tracker.WithLogger(logger),
		tracker.WithChangeFunc(hub.Notify),
		tracker.WithStatusFunc(func(ctx context.Context, h model.Habit, s model.Status) {
			svc.HabitStatusChanged(ctx, h, s)
		}),
	)
	tr.Load(context.Background())
	mgr := backup.NewManager(backup.Config{}, store.NewBackupStore(db), tr, logger, nil)

	return New(tr, svc, mgr, hub, Options{}, logger)
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["today"] != "2026-10-15" {
		t.Errorf("body = %v", body)
	}
}

func TestRoutes(t *testing.T) {
	srv := setupServer(t)
	router := srv.Router()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/api/habits", "", http.StatusOK},
		{"POST", "/api/habits", `{"name":"Read"}`, http.StatusCreated},
		{"GET", "/api/categories", "", http.StatusOK},
		{"GET", "/api/stats", "", http.StatusOK},
		{"GET", "/api/stats/calendar?month=2026-10", "", http.StatusOK},
		{"GET", "/api/achievements", "", http.StatusOK},
		{"GET", "/api/preferences", "", http.StatusOK},
		{"GET", "/api/plans", "", http.StatusOK},
		{"GET", "/api/export", "", http.StatusOK},
		{"GET", "/api/backups", "", http.StatusOK},
		{"GET", "/api/dating/profiles", "", http.StatusOK},
		{"GET", "/api/dating/challenges", "", http.StatusOK},
		{"GET", "/api/dating/tournaments", "", http.StatusOK},
		{"GET", "/api/dating/stats", "", http.StatusOK},
		{"GET", "/api/dating/tournaments/nope", "", http.StatusNotFound},
		{"PATCH", "/api/habits", "", http.StatusMethodNotAllowed},
		{"GET", "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestImportIsRateLimited(t *testing.T) {
	srv := setupServer(t)
	router := srv.Router()

	var last int
	for i := 0; i <= importLimit; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/import/csv", strings.NewReader("Area,Task,Details,Rating,Type,Time frame\n")))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status after %d imports = %d, want 429", importLimit+1, last)
	}
}

func TestHabitStatusFeedsDatingGame(t *testing.T) {
	srv := setupServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/habits", strings.NewReader(`{"name":"Read","points":15}`)))
	var h struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &h)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/entries/"+h.ID+"/2026-10-15/toggle", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/dating/stats", nil))
	var stats dating.Stats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalPoints != 15 {
		t.Errorf("dating points = %d, want 15", stats.TotalPoints)
	}
}
