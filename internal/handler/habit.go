package handler

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/habiti/internal/habit"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/tracker"
)

type HabitHandler struct {
	tracker *tracker.Tracker
}

func NewHabitHandler(t *tracker.Tracker) *HabitHandler {
	return &HabitHandler{tracker: t}
}

// List returns every habit, or the category tree with ?grouped=true.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	if grouped, _ := strconv.ParseBool(r.URL.Query().Get("grouped")); grouped {
		tree := h.tracker.Grouped()
		if tree == nil {
			tree = []habit.CategoryNode{}
		}
		writeJSON(w, http.StatusOK, tree)
		return
	}
	habits := h.tracker.Habits()
	if habits == nil {
		habits = []model.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in habit.HabitInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.tracker.AddHabit(r.Context(), in))
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	hb, ok := h.tracker.Habit(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	writeJSON(w, http.StatusOK, hb)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u habit.HabitUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := u.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hb, ok := h.tracker.UpdateHabit(r.Context(), r.PathValue("id"), u)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	writeJSON(w, http.StatusOK, hb)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.tracker.RemoveHabit(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := h.tracker.Categories()
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}
