package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/habiti/internal/dating"
	"github.com/dukerupert/habiti/internal/websocket"
)

type DatingHandler struct {
	svc    *dating.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewDatingHandler(svc *dating.Service, hub *websocket.Hub, logger *slog.Logger) *DatingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatingHandler{svc: svc, hub: hub, logger: logger}
}

func (h *DatingHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// writeDatingError maps game errors onto status codes.
func (h *DatingHandler) writeDatingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dating.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dating.ErrInvalid), errors.Is(err, dating.ErrTooFewEntrants):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dating.ErrTournamentOver):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("dating request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *DatingHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := h.svc.Profiles()
	if profiles == nil {
		profiles = []dating.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *DatingHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.svc.Profile(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":      p,
		"interactions": nonNil(h.svc.Interactions(p.ID)),
	})
}

func (h *DatingHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in dating.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.AddProfile(r.Context(), in)
	if err != nil {
		h.writeDatingError(w, err)
		return
	}
	h.broadcast(websocket.NewMessage("dating_profile", "created", p.ID, nil))
	writeJSON(w, http.StatusCreated, p)
}

func (h *DatingHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.svc.RemoveProfile(r.Context(), id) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	h.broadcast(websocket.NewMessage("dating_profile", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Interact records an interaction with profile {id}.
func (h *DatingHandler) Interact(w http.ResponseWriter, r *http.Request) {
	var in dating.InteractionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.ProfileID = r.PathValue("id")

	it, done, err := h.svc.Interact(r.Context(), in)
	if err != nil {
		h.writeDatingError(w, err)
		return
	}
	h.broadcast(websocket.NewMessage("dating_interaction", "created", it.ID, map[string]any{
		"profile_id": it.ProfileID,
	}))
	if done == nil {
		done = []dating.Challenge{}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"interaction":          it,
		"completed_challenges": done,
	})
}

func (h *DatingHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	cs := h.svc.Challenges()
	if cs == nil {
		cs = []dating.Challenge{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *DatingHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var in dating.ChallengeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.AddChallenge(r.Context(), in)
	if err != nil {
		h.writeDatingError(w, err)
		return
	}
	h.broadcast(websocket.NewMessage("dating_challenge", "created", c.ID, nil))
	writeJSON(w, http.StatusCreated, c)
}

func (h *DatingHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ts := h.svc.Tournaments()
	if ts == nil {
		ts = []dating.Tournament{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *DatingHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	t, ok := h.svc.Tournament(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type tournamentRequest struct {
	Name       string   `json:"name"`
	ProfileIDs []string `json:"profile_ids"`
}

func (h *DatingHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.StartTournament(r.Context(), strings.TrimSpace(req.Name), req.ProfileIDs)
	if err != nil {
		h.writeDatingError(w, err)
		return
	}
	h.broadcast(websocket.NewMessage("dating_tournament", "created", t.ID, nil))
	writeJSON(w, http.StatusCreated, t)
}

type winnerRequest struct {
	Match  int    `json:"match"`
	Winner string `json:"winner"`
}

// RecordWinner decides one match of the current round of tournament {id}.
func (h *DatingHandler) RecordWinner(w http.ResponseWriter, r *http.Request) {
	var req winnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.RecordWinner(r.Context(), r.PathValue("id"), req.Match, req.Winner)
	if err != nil {
		h.writeDatingError(w, err)
		return
	}
	extra := map[string]any{}
	if t.Champion != "" {
		extra["champion"] = t.Champion
	}
	h.broadcast(websocket.NewMessage("dating_tournament", "updated", t.ID, extra))
	writeJSON(w, http.StatusOK, t)
}

func (h *DatingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
