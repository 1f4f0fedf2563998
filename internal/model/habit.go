package model

import "time"

type Kind string

const (
	KindGood Kind = "good"
	KindBad  Kind = "bad"
)

func (k Kind) Valid() bool {
	return k == KindGood || k == KindBad
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyCustom
}

type Tracking string

const (
	TrackingSimple   Tracking = "simple"
	TrackingQuantity Tracking = "quantity"
	TrackingDuration Tracking = "duration"
	TrackingSets     Tracking = "sets"
)

func (t Tracking) Valid() bool {
	switch t {
	case TrackingSimple, TrackingQuantity, TrackingDuration, TrackingSets:
		return true
	}
	return false
}

// Default values applied to new habits and to habits loaded from documents
// written before the game fields existed.
const (
	DefaultPoints = 10
	DefaultGoal   = 30
)

// AllDays is the target-day set of a daily habit.
var AllDays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

type Habit struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Kind        Kind           `json:"kind"`
	Difficulty  Difficulty     `json:"difficulty"`
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	Group       string         `json:"group,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Points      int            `json:"points"`
	Streak      int            `json:"streak"`
	BestStreak  int            `json:"best_streak"`
	Goal        int            `json:"goal"`
	Reward      string         `json:"reward,omitempty"`
	Frequency   Frequency      `json:"frequency"`
	TargetDays  []time.Weekday `json:"target_days"`
	TimeFrame   string         `json:"time_frame,omitempty"`
	Active      bool           `json:"active"`
	Tracking    Tracking       `json:"tracking,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ApplyDefaults fills zero-valued game fields. It reports whether anything
// changed.
func (h *Habit) ApplyDefaults() bool {
	changed := false
	if !h.Kind.Valid() {
		h.Kind = KindGood
		changed = true
	}
	if !h.Difficulty.Valid() {
		h.Difficulty = DifficultyMedium
		changed = true
	}
	if h.Points <= 0 {
		h.Points = DefaultPoints
		changed = true
	}
	if h.Goal <= 0 {
		h.Goal = DefaultGoal
		changed = true
	}
	if !h.Frequency.Valid() {
		h.Frequency = FrequencyDaily
		changed = true
	}
	if len(h.TargetDays) == 0 {
		h.TargetDays = append([]time.Weekday(nil), AllDays...)
		changed = true
	}
	if h.Tracking == "" {
		h.Tracking = TrackingSimple
		changed = true
	}
	if h.BestStreak < h.Streak {
		h.BestStreak = h.Streak
		changed = true
	}
	return changed
}

// ScheduledOn reports whether the habit targets the weekday of date.
func (h Habit) ScheduledOn(date time.Time) bool {
	if len(h.TargetDays) == 0 {
		return true
	}
	wd := date.Weekday()
	for _, d := range h.TargetDays {
		if d == wd {
			return true
		}
	}
	return false
}
