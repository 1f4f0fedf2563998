package handler

import (
	"net/http"

	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/tracker"
)

type PlanHandler struct {
	tracker *tracker.Tracker
}

func NewPlanHandler(t *tracker.Tracker) *PlanHandler {
	return &PlanHandler{tracker: t}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans := h.tracker.Plans()
	if plans == nil {
		plans = []model.NightlyPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	p, ok := h.tracker.Plan(date)
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Put creates or replaces the plan for {date}. A date in the body is
// ignored in favour of the path.
func (h *PlanHandler) Put(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	var p model.NightlyPlan
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.Date = date

	saved, err := h.tracker.SavePlan(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	if !h.tracker.DeletePlan(r.Context(), date) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
