// Package achievement holds the achievement catalogue and the evaluator that
// unlocks entries from it.
package achievement

import (
	"github.com/dukerupert/habiti/internal/model"
)

// Predicate reports whether an achievement is earned by the given state.
type Predicate func(state model.GameState, habits []model.Habit) bool

type Definition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Predicate   Predicate `json:"-"`
}

// Status is a definition paired with whether it has been unlocked.
type Status struct {
	Definition
	Unlocked bool `json:"unlocked"`
}

// Evaluate appends the id of every definition whose predicate holds and that
// is not yet unlocked to state.Unlocked, and returns the newly unlocked
// definitions. Unlocked ids are never removed, so calling Evaluate again with
// the same inputs is a no-op.
func Evaluate(state *model.GameState, habits []model.Habit, defs []Definition) []Definition {
	var unlocked []Definition
	for _, d := range defs {
		if d.Predicate == nil || state.HasUnlocked(d.ID) {
			continue
		}
		if d.Predicate(*state, habits) {
			state.Unlocked = append(state.Unlocked, d.ID)
			unlocked = append(unlocked, d)
		}
	}
	return unlocked
}

// Catalogue lists every definition with its unlocked flag, in definition
// order.
func Catalogue(state model.GameState, defs []Definition) []Status {
	out := make([]Status, 0, len(defs))
	for _, d := range defs {
		out = append(out, Status{Definition: d, Unlocked: state.HasUnlocked(d.ID)})
	}
	return out
}

// Defaults returns the built-in achievement catalogue.
func Defaults() []Definition {
	return []Definition{
		{
			ID:          "first-habit",
			Name:        "First Step",
			Description: "Create your first habit",
			Icon:        "🌱",
			Predicate:   habitCount(1),
		},
		{
			ID:          "habit-collector",
			Name:        "Habit Collector",
			Description: "Track 5 habits",
			Icon:        "📚",
			Predicate:   habitCount(5),
		},
		{
			ID:          "week-warrior",
			Name:        "Week Warrior",
			Description: "Reach a 7 day streak on any habit",
			Icon:        "🔥",
			Predicate: anyHabit(func(h model.Habit) bool {
				return h.Streak >= 7
			}),
		},
		{
			ID:          "month-master",
			Name:        "Month Master",
			Description: "Reach a best streak of 30 days",
			Icon:        "🏆",
			Predicate: anyHabit(func(h model.Habit) bool {
				return h.BestStreak >= 30
			}),
		},
		{
			ID:          "habit-breaker",
			Name:        "Habit Breaker",
			Description: "Avoid a bad habit for 7 days",
			Icon:        "⛓️",
			Predicate: anyHabit(func(h model.Habit) bool {
				return h.Kind == model.KindBad && h.Streak >= 7
			}),
		},
		{
			ID:          "points-100",
			Name:        "Century",
			Description: "Earn 100 points",
			Icon:        "💯",
			Predicate:   pointsAtLeast(100),
		},
		{
			ID:          "points-500",
			Name:        "High Scorer",
			Description: "Earn 500 points",
			Icon:        "⭐",
			Predicate:   pointsAtLeast(500),
		},
		{
			ID:          "points-1000",
			Name:        "Point Master",
			Description: "Earn 1000 points",
			Icon:        "👑",
			Predicate:   pointsAtLeast(1000),
		},
		{
			ID:          "level-5",
			Name:        "Rising Star",
			Description: "Reach level 5",
			Icon:        "🚀",
			Predicate: func(s model.GameState, _ []model.Habit) bool {
				return s.Level >= 5
			},
		},
		{
			ID:          "daily-streak-7",
			Name:        "Consistent",
			Description: "Keep at least one habit going 7 days in a row",
			Icon:        "📅",
			Predicate:   dailyStreakAtLeast(7),
		},
		{
			ID:          "daily-streak-30",
			Name:        "Unstoppable",
			Description: "Keep at least one habit going 30 days in a row",
			Icon:        "🗓️",
			Predicate:   dailyStreakAtLeast(30),
		},
	}
}

func habitCount(n int) Predicate {
	return func(_ model.GameState, habits []model.Habit) bool {
		return len(habits) >= n
	}
}

func pointsAtLeast(n int) Predicate {
	return func(s model.GameState, _ []model.Habit) bool {
		return s.TotalPoints >= n
	}
}

func dailyStreakAtLeast(n int) Predicate {
	return func(s model.GameState, _ []model.Habit) bool {
		return s.DailyStreak >= n || s.LongestStreak >= n
	}
}

func anyHabit(fn func(model.Habit) bool) Predicate {
	return func(_ model.GameState, habits []model.Habit) bool {
		for _, h := range habits {
			if fn(h) {
				return true
			}
		}
		return false
	}
}
