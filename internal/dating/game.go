// Package dating is the dating-sim mini-game: profiles to court,
// interactions that earn points and affection, challenges and knockout
// tournaments. It keeps its own points and levels, separate from the habit
// tracker's.
package dating

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/scoring"
)

var (
	ErrNotFound = errors.New("dating: not found")
	ErrInvalid  = errors.New("dating: invalid input")
)

// LevelDivisor is the points-per-level of the mini-game.
const LevelDivisor = scoring.LevelDivisorLegacy

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Bio       string    `json:"bio,omitempty"`
	Traits    []string  `json:"traits"`
	Affection int       `json:"affection"`
	CreatedAt time.Time `json:"created_at"`
}

type ProfileInput struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Bio    string   `json:"bio"`
	Traits []string `json:"traits"`
}

func (in ProfileInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if in.Age < 18 || in.Age > 120 {
		errs = append(errs, fmt.Errorf("age %d out of range", in.Age))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNeutral Outcome = "neutral"
	OutcomeFailure Outcome = "failure"
)

func (o Outcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeNeutral || o == OutcomeFailure
}

// Points and affection change per interaction outcome.
var outcomeEffects = map[Outcome]struct{ points, affection int }{
	OutcomeSuccess: {10, 10},
	OutcomeNeutral: {2, 1},
	OutcomeFailure: {0, -5},
}

type Interaction struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Kind      string    `json:"kind"`
	Outcome   Outcome   `json:"outcome"`
	Points    int       `json:"points"`
	At        time.Time `json:"at"`
}

type InteractionInput struct {
	ProfileID string  `json:"profile_id"`
	Kind      string  `json:"kind"`
	Outcome   Outcome `json:"outcome"`
}

type Challenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	Reward      int        `json:"reward"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ChallengeInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	Reward      int    `json:"reward"`
}

func (in ChallengeInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if in.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrInvalid)
	}
	if in.Reward < 0 {
		return fmt.Errorf("%w: reward must not be negative", ErrInvalid)
	}
	return nil
}

// Game is the persisted state of the mini-game. It is not safe for
// concurrent use.
type Game struct {
	Points       int           `json:"points"`
	Profiles     []Profile     `json:"profiles"`
	Interactions []Interaction `json:"interactions"`
	Challenges   []Challenge   `json:"challenges"`
	Tournaments  []Tournament  `json:"tournaments"`
}

// ScoreHabitEvent is the mini-game's reward for a habit status: a completed
// good habit or an avoided bad habit earns base, a failed bad habit earns
// twice base. Everything else earns nothing.
func ScoreHabitEvent(kind model.Kind, status model.Status, base int) int {
	switch kind {
	case model.KindGood:
		if status == model.StatusCompleted {
			return base
		}
	case model.KindBad:
		switch status {
		case model.StatusSkipped, model.StatusNotStarted:
			return base
		case model.StatusFailed:
			return scoring.FailedMultiplier * base
		}
	}
	return 0
}

func (g *Game) profileIndex(id string) int {
	for i := range g.Profiles {
		if g.Profiles[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Game) Profile(id string) (Profile, bool) {
	if i := g.profileIndex(id); i >= 0 {
		return g.Profiles[i], true
	}
	return Profile{}, false
}

func (g *Game) AddProfile(id string, in ProfileInput, now time.Time) Profile {
	traits := make([]string, 0, len(in.Traits))
	for _, tr := range in.Traits {
		if tr = strings.TrimSpace(tr); tr != "" {
			traits = append(traits, tr)
		}
	}
	p := Profile{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		Bio:       strings.TrimSpace(in.Bio),
		Traits:    traits,
		CreatedAt: now,
	}
	g.Profiles = append(g.Profiles, p)
	return p
}

// RemoveProfile deletes the profile and its interactions.
func (g *Game) RemoveProfile(id string) bool {
	i := g.profileIndex(id)
	if i < 0 {
		return false
	}
	g.Profiles = append(g.Profiles[:i], g.Profiles[i+1:]...)
	kept := g.Interactions[:0]
	for _, in := range g.Interactions {
		if in.ProfileID != id {
			kept = append(kept, in)
		}
	}
	g.Interactions = kept
	return true
}

// Interact records an interaction, adjusting points and the profile's
// affection, and advances open challenges on success. It returns the
// interaction and any challenges completed by it.
func (g *Game) Interact(id string, in InteractionInput, now time.Time) (Interaction, []Challenge, error) {
	if !in.Outcome.Valid() {
		return Interaction{}, nil, fmt.Errorf("%w: outcome %q", ErrInvalid, in.Outcome)
	}
	pi := g.profileIndex(in.ProfileID)
	if pi < 0 {
		return Interaction{}, nil, fmt.Errorf("profile %s: %w", in.ProfileID, ErrNotFound)
	}

	eff := outcomeEffects[in.Outcome]
	g.Profiles[pi].Affection += eff.affection
	if g.Profiles[pi].Affection < 0 {
		g.Profiles[pi].Affection = 0
	}
	g.Points += eff.points

	kind := strings.TrimSpace(in.Kind)
	if kind == "" {
		kind = "chat"
	}
	it := Interaction{
		ID:        id,
		ProfileID: in.ProfileID,
		Kind:      kind,
		Outcome:   in.Outcome,
		Points:    eff.points,
		At:        now,
	}
	g.Interactions = append(g.Interactions, it)

	var done []Challenge
	if in.Outcome == OutcomeSuccess {
		done = g.advanceChallenges(now)
	}
	return it, done, nil
}

// advanceChallenges adds one step to every open challenge; a challenge pays
// its reward once, when it first reaches its target.
func (g *Game) advanceChallenges(now time.Time) []Challenge {
	var done []Challenge
	for i := range g.Challenges {
		c := &g.Challenges[i]
		if c.Completed {
			continue
		}
		c.Progress++
		if c.Progress >= c.Target {
			c.Completed = true
			at := now
			c.CompletedAt = &at
			g.Points += c.Reward
			done = append(done, *c)
		}
	}
	return done
}

func (g *Game) AddChallenge(id string, in ChallengeInput) Challenge {
	c := Challenge{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Target:      in.Target,
		Reward:      in.Reward,
	}
	g.Challenges = append(g.Challenges, c)
	return c
}

// Stats summarizes the mini-game.
type Stats struct {
	TotalPoints         int     `json:"total_points"`
	Level               int     `json:"level"`
	Profiles            int     `json:"profiles"`
	Interactions        int     `json:"interactions"`
	SuccessRate         float64 `json:"success_rate"`
	TopProfile          string  `json:"top_profile,omitempty"`
	CompletedChallenges int     `json:"completed_challenges"`
	Tournaments         int     `json:"tournaments"`
}

func (g *Game) Stats() Stats {
	s := Stats{
		TotalPoints:  g.Points,
		Level:        scoring.Level(g.Points, LevelDivisor),
		Profiles:     len(g.Profiles),
		Interactions: len(g.Interactions),
		Tournaments:  len(g.Tournaments),
	}
	if n := len(g.Interactions); n > 0 {
		ok := 0
		for _, it := range g.Interactions {
			if it.Outcome == OutcomeSuccess {
				ok++
			}
		}
		s.SuccessRate = float64(ok) / float64(n) * 100
	}
	if ranked := g.ranked(nil); len(ranked) > 0 {
		s.TopProfile = ranked[0].Name
	}
	for _, c := range g.Challenges {
		if c.Completed {
			s.CompletedChallenges++
		}
	}
	return s
}

// ranked returns the profiles named in ids (all profiles when ids is nil)
// ordered by affection, highest first, then by name.
func (g *Game) ranked(ids []string) []Profile {
	var out []Profile
	if ids == nil {
		out = append(out, g.Profiles...)
	} else {
		seen := map[string]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if p, ok := g.Profile(id); ok {
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Affection != out[j].Affection {
			return out[i].Affection > out[j].Affection
		}
		return out[i].Name < out[j].Name
	})
	return out
}
