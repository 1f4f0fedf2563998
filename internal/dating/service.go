package dating

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
)

// Slots is the persistence the service writes through.
type Slots interface {
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
}

// Service guards a Game and snapshots it to the dating slot after every
// change. Save failures are logged, never returned.
type Service struct {
	mu     sync.Mutex
	game   Game
	slots  Slots
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(slots Slots, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		slots:  slots,
		logger: logger.With("component", "dating"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load replaces the in-memory game with the stored one, if any.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var g Game
	ok, err := s.slots.Load(ctx, store.SlotDating, &g)
	if err != nil {
		s.logger.Error("load slot", "slot", store.SlotDating, "error", err)
		return
	}
	if ok {
		s.game = g
	}
}

func (s *Service) save(ctx context.Context) {
	if err := s.slots.Save(ctx, store.SlotDating, s.game); err != nil {
		s.logger.Error("save slot", "slot", store.SlotDating, "error", err)
	}
}

func (s *Service) Profiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Profile(nil), s.game.Profiles...)
}

func (s *Service) Profile(id string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Profile(id)
}

func (s *Service) AddProfile(ctx context.Context, in ProfileInput) (Profile, error) {
	if err := in.Validate(); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.game.AddProfile(s.newID(), in, s.now())
	s.save(ctx)
	return p, nil
}

func (s *Service) RemoveProfile(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.game.RemoveProfile(id) {
		return false
	}
	s.save(ctx)
	return true
}

// Interact records an interaction and returns it with any challenges it
// completed.
func (s *Service) Interact(ctx context.Context, in InteractionInput) (Interaction, []Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, done, err := s.game.Interact(s.newID(), in, s.now())
	if err != nil {
		return Interaction{}, nil, err
	}
	for _, c := range done {
		s.logger.Info("challenge completed", "id", c.ID, "reward", c.Reward)
	}
	s.save(ctx)
	return it, done, nil
}

// Interactions returns the interactions with profileID, or all of them when
// profileID is empty.
func (s *Service) Interactions(profileID string) []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Interaction
	for _, it := range s.game.Interactions {
		if profileID == "" || it.ProfileID == profileID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Service) Challenges() []Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Challenge(nil), s.game.Challenges...)
}

func (s *Service) AddChallenge(ctx context.Context, in ChallengeInput) (Challenge, error) {
	if err := in.Validate(); err != nil {
		return Challenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.game.AddChallenge(s.newID(), in)
	s.save(ctx)
	return c, nil
}

func (s *Service) Tournaments() []Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tournament, len(s.game.Tournaments))
	for i, t := range s.game.Tournaments {
		out[i] = t.clone()
	}
	return out
}

func (s *Service) Tournament(id string) (Tournament, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Tournament(id)
}

func (s *Service) StartTournament(ctx context.Context, name string, profileIDs []string) (Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.game.StartTournament(s.newID(), name, profileIDs, s.now())
	if err != nil {
		return Tournament{}, err
	}
	s.save(ctx)
	return t, nil
}

func (s *Service) RecordWinner(ctx context.Context, tournamentID string, match int, winner string) (Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.game.RecordWinner(tournamentID, match, winner)
	if err != nil {
		return t, err
	}
	if t.Champion != "" {
		s.logger.Info("tournament decided", "id", t.ID, "champion", t.Champion)
	}
	s.save(ctx)
	return t, nil
}

// HabitStatusChanged credits the mini-game for a habit status change.
func (s *Service) HabitStatusChanged(ctx context.Context, h model.Habit, status model.Status) int {
	pts := ScoreHabitEvent(h.Kind, status, h.Points)
	if pts == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.Points += pts
	s.save(ctx)
	return pts
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Stats()
}
