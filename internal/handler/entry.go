package handler

import (
	"net/http"

	"github.com/dukerupert/habiti/internal/habit"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/tracker"
)

type EntryHandler struct {
	tracker *tracker.Tracker
}

func NewEntryHandler(t *tracker.Tracker) *EntryHandler {
	return &EntryHandler{tracker: t}
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

func (h *EntryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	e, ok := h.tracker.SetStatus(r.Context(), r.PathValue("habit_id"), date, req.Status)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Toggle flips the day between completed and not-started.
func (h *EntryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	e, ok := h.tracker.Toggle(r.Context(), r.PathValue("habit_id"), date)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntryHandler) SetDetails(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	var d habit.EntryDetails
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (d.TimeSpent != nil && *d.TimeSpent < 0) || (d.Quantity != nil && *d.Quantity < 0) {
		writeError(w, http.StatusBadRequest, "time_spent and quantity must not be negative")
		return
	}

	e, ok := h.tracker.SetDetails(r.Context(), r.PathValue("habit_id"), date, d)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// List returns the recorded entries of one habit, oldest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("habit_id")
	if _, ok := h.tracker.Habit(id); !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	entries := h.tracker.Entries(id)
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
