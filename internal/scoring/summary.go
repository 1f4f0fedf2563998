package scoring

import (
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// HabitSummary is the per-habit line of the stats page.
type HabitSummary struct {
	HabitID        string       `json:"habit_id"`
	Name           string       `json:"name"`
	Kind           model.Kind   `json:"kind"`
	Streak         int          `json:"streak"`
	BestStreak     int          `json:"best_streak"`
	CompletionRate float64      `json:"completion_rate"`
	Points         int          `json:"points"`
	Today          model.Status `json:"today"`
	GoalProgress   float64      `json:"goal_progress"`
}

// Summarize computes a HabitSummary for each habit.
func Summarize(habits []model.Habit, status StatusFunc, today time.Time, maxLookback int) []HabitSummary {
	out := make([]HabitSummary, 0, len(habits))
	for _, h := range habits {
		streak := Streak(h, status, today, maxLookback)
		rate := CompletionRate(h, status, today, CompletionWindow)
		var progress float64
		if h.Goal > 0 {
			progress = float64(streak) / float64(h.Goal) * 100
			if progress > 100 {
				progress = 100
			}
		}
		out = append(out, HabitSummary{
			HabitID:        h.ID,
			Name:           h.Name,
			Kind:           h.Kind,
			Streak:         streak,
			BestStreak:     BestStreak(h.BestStreak, streak),
			CompletionRate: rate,
			Points:         HabitPoints(h.Points, rate, streak),
			Today:          status(h.ID, model.DateOf(today)),
			GoalProgress:   progress,
		})
	}
	return out
}

// CalendarDay is one cell of the month view.
type CalendarDay struct {
	Date       string `json:"date"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
	Continuing int    `json:"continuing"`
	Scheduled  int    `json:"scheduled"`
}

// Calendar returns one CalendarDay per day of the month containing month.
func Calendar(habits []model.Habit, status StatusFunc, month time.Time) []CalendarDay {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	next := first.AddDate(0, 1, 0)

	var days []CalendarDay
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		date := model.DateOf(d)
		cell := CalendarDay{Date: date}
		for _, h := range habits {
			s := status(h.ID, date)
			switch s {
			case model.StatusCompleted:
				cell.Completed++
			case model.StatusFailed:
				cell.Failed++
			}
			if Continues(h.Kind, s) {
				cell.Continuing++
			}
			if h.Active && h.ScheduledOn(d) {
				cell.Scheduled++
			}
		}
		days = append(days, cell)
	}
	return days
}
