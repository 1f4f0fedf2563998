package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// Strategy names how TotalPoints is maintained.
type Strategy string

const (
	// StrategyInstant adjusts the total by a per-toggle delta.
	StrategyInstant Strategy = "instant"
	// StrategyRecompute rebuilds the total from completion rates and streaks.
	StrategyRecompute Strategy = "recompute"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyInstant, StrategyRecompute:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown scoring strategy %q", s)
}

// Level divisors found in the two historical state containers.
const (
	LevelDivisorLegacy  = 50
	LevelDivisorTracker = 100
)

const (
	// CompletionWindow is the number of days behind a completion rate.
	CompletionWindow = 30
	// StreakBonusPerDay is added per current streak day by the recompute
	// strategy.
	StreakBonusPerDay = 2
	// FailedMultiplier scales the base points awarded when a bad habit is
	// marked failed under the instant strategy.
	FailedMultiplier = 2
)

// Level returns floor(points/divisor)+1.
func Level(points, divisor int) int {
	if divisor <= 0 {
		divisor = LevelDivisorTracker
	}
	if points < 0 {
		points = 0
	}
	return points/divisor + 1
}

// statusDelta is the instant-strategy award for a habit sitting in status.
func statusDelta(kind model.Kind, base int, status model.Status) int {
	switch {
	case kind == model.KindGood && status == model.StatusCompleted:
		return base
	case kind == model.KindBad && status == model.StatusFailed:
		return FailedMultiplier * base
	}
	return 0
}

// ToggleDelta is the change to the instant-strategy total when a habit's day
// moves from one status to another. Entering completed (good) or failed
// (bad) awards points; leaving those statuses takes the award back.
func ToggleDelta(kind model.Kind, base int, from, to model.Status) int {
	return statusDelta(kind, base, to) - statusDelta(kind, base, from)
}

// HabitPoints is the recompute-strategy contribution of one habit:
// round(base × rate/100 + streak × 2).
func HabitPoints(base int, completionRate float64, streak int) int {
	return int(math.Round(float64(base)*completionRate/100 + float64(streak*StreakBonusPerDay)))
}

// RecomputePoints sums HabitPoints over all habits using the last
// CompletionWindow days and each habit's current streak.
func RecomputePoints(habits []model.Habit, status StatusFunc, today time.Time, maxLookback int) int {
	total := 0
	for _, h := range habits {
		rate := CompletionRate(h, status, today, CompletionWindow)
		total += HabitPoints(h.Points, rate, Streak(h, status, today, maxLookback))
	}
	return total
}
