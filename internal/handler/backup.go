package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/tracker"
)

const defaultHistoryLimit = 20

type BackupHandler struct {
	manager *backup.Manager
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, t *tracker.Tracker, logger *slog.Logger) *BackupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupHandler{manager: m, tracker: t, logger: logger}
}

// List returns the manager status and recent history. ?limit=N caps the
// history.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	history, err := h.manager.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if history == nil {
		history = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  h.manager.Status(),
		"backups": history,
	})
}

// Run uploads a backup immediately.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	b, err := h.manager.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, backup.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusBadGateway, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Restore downloads backup {id} and imports it over the current state.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	doc, err := h.manager.Fetch(r.Context(), id)
	switch {
	case errors.Is(err, backup.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, "backup not found")
		return
	case errors.Is(err, backup.ErrDecrypt), errors.Is(err, backup.ErrVersion):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.Error("fetch backup", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "failed to download backup")
		return
	}

	writeJSON(w, http.StatusOK, h.tracker.Import(r.Context(), doc))
}
