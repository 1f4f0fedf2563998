// Package scoring derives streaks, points, levels and completion rates from
// habits and their entries. Every function here is pure.
package scoring

import (
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// DefaultMaxLookback bounds every backward day walk.
const DefaultMaxLookback = 365

// StatusFunc returns the recorded status of a habit on a YYYY-MM-DD day.
type StatusFunc func(habitID, date string) model.Status

// Continues reports whether status keeps a habit of kind on its streak: a
// good habit needs completed, a bad habit needs to have been avoided
// (not-started or skipped).
func Continues(kind model.Kind, status model.Status) bool {
	if kind == model.KindBad {
		return status == model.StatusNotStarted || status == model.StatusSkipped
	}
	return status == model.StatusCompleted
}

// Streak walks backward from today, counting consecutive continuing days.
// The walk stops at the first non-continuing day or after maxLookback days.
// A bad habit's walk also stops before its creation day, since an empty log
// would otherwise count as avoided forever.
func Streak(h model.Habit, status StatusFunc, today time.Time, maxLookback int) int {
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}
	day := model.StartOfDay(today)
	var floor time.Time
	if h.Kind == model.KindBad && !h.CreatedAt.IsZero() {
		floor = model.StartOfDay(h.CreatedAt.In(today.Location()))
	}

	n := 0
	for n < maxLookback {
		if !floor.IsZero() && day.Before(floor) {
			break
		}
		if !Continues(h.Kind, status(h.ID, model.DateOf(day))) {
			break
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// BestStreak returns the larger of the stored best and the current streak.
func BestStreak(best, current int) int {
	if current > best {
		return current
	}
	return best
}

// DailyStreak counts consecutive days, ending today, on which at least one
// habit continued its own streak.
func DailyStreak(habits []model.Habit, status StatusFunc, today time.Time, maxLookback int) int {
	if len(habits) == 0 {
		return 0
	}
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}
	day := model.StartOfDay(today)
	n := 0
	for n < maxLookback {
		if !anyContinues(habits, status, day) {
			break
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func anyContinues(habits []model.Habit, status StatusFunc, day time.Time) bool {
	date := model.DateOf(day)
	for _, h := range habits {
		if h.Kind == model.KindBad && !h.CreatedAt.IsZero() &&
			day.Before(model.StartOfDay(h.CreatedAt.In(day.Location()))) {
			continue
		}
		if Continues(h.Kind, status(h.ID, date)) {
			return true
		}
	}
	return false
}

// CompletionRate is the percentage (0-100) of the last days days, today
// included, on which the habit was completed.
func CompletionRate(h model.Habit, status StatusFunc, today time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}
	day := model.StartOfDay(today)
	completed := 0
	for i := 0; i < days; i++ {
		if status(h.ID, model.DateOf(day)) == model.StatusCompleted {
			completed++
		}
		day = day.AddDate(0, 0, -1)
	}
	return float64(completed) / float64(days) * 100
}
