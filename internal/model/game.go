package model

import "time"

type Preferences struct {
	Theme         string       `json:"theme"`
	WeekStart     time.Weekday `json:"week_start"`
	Notifications bool         `json:"notifications"`
	Sound         bool         `json:"sound"`
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		WeekStart:     time.Monday,
		Notifications: true,
		Sound:         true,
	}
}

// GameState is the user-level aggregate derived from habits and entries.
// Unlocked only ever grows.
type GameState struct {
	TotalPoints   int         `json:"total_points"`
	Level         int         `json:"level"`
	Unlocked      []string    `json:"unlocked"`
	DailyStreak   int         `json:"daily_streak"`
	LongestStreak int         `json:"longest_streak"`
	Preferences   Preferences `json:"preferences"`
}

// HasUnlocked reports whether id is in the unlocked set.
func (g GameState) HasUnlocked(id string) bool {
	for _, u := range g.Unlocked {
		if u == id {
			return true
		}
	}
	return false
}

// NewGameState returns the game state of a fresh install.
func NewGameState() GameState {
	return GameState{Level: 1, Unlocked: []string{}, Preferences: DefaultPreferences()}
}
