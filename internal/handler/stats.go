package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/tracker"
)

type StatsHandler struct {
	tracker *tracker.Tracker
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Stats())
}

// Calendar returns per-day completion counts for ?month=YYYY-MM, defaulting
// to the current month.
func (h *StatsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.tracker.Today()[:7]
	}
	m, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"days":  h.tracker.Calendar(m),
	})
}

func (h *StatsHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Achievements())
}

func (h *StatsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Preferences())
}

func (h *StatsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	p := h.tracker.Preferences()
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = model.DefaultPreferences().Theme
	}
	if p.WeekStart < time.Sunday || p.WeekStart > time.Saturday {
		writeError(w, http.StatusBadRequest, "week_start must be 0-6")
		return
	}
	writeJSON(w, http.StatusOK, h.tracker.SetPreferences(r.Context(), p))
}
