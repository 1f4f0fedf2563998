package scoring

import (
	"testing"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

var today = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

// statuses is an in-memory status source keyed by habit id and day offset
// from today.
type statuses map[string]map[int]model.Status

func (s statuses) set(habitID string, daysAgo int, st model.Status) {
	if s[habitID] == nil {
		s[habitID] = map[int]model.Status{}
	}
	s[habitID][daysAgo] = st
}

func (s statuses) lookup(habitID, date string) model.Status {
	d, err := time.ParseInLocation(model.DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	ago := int(model.StartOfDay(today).Sub(d).Hours() / 24)
	if st, ok := s[habitID][ago]; ok {
		return st
	}
	return model.StatusNotStarted
}

func TestGoodStreakCountsConsecutiveCompleted(t *testing.T) {
	for k := 0; k <= 10; k++ {
		s := statuses{}
		for i := 0; i < k; i++ {
			s.set("h", i, model.StatusCompleted)
		}
		s.set("h", k, model.StatusSkipped)
		s.set("h", k+1, model.StatusCompleted)

		h := model.Habit{ID: "h", Kind: model.KindGood}
		if got := Streak(h, s.lookup, today, 0); got != k {
			t.Errorf("k=%d: streak = %d", k, got)
		}
	}
}

func TestExerciseScenario(t *testing.T) {
	s := statuses{}
	s.set("ex", 0, model.StatusCompleted)
	s.set("ex", 1, model.StatusCompleted)
	s.set("ex", 2, model.StatusCompleted)

	h := model.Habit{ID: "ex", Name: "Exercise", Kind: model.KindGood, Points: 15}
	streak := Streak(h, s.lookup, today, DefaultMaxLookback)
	if streak != 3 {
		t.Fatalf("streak = %d, want 3", streak)
	}
	if best := BestStreak(h.BestStreak, streak); best < 3 {
		t.Errorf("best = %d, want >= 3", best)
	}
}

func TestGoodStreakZeroWhenTodayOpen(t *testing.T) {
	s := statuses{}
	s.set("h", 1, model.StatusCompleted)
	h := model.Habit{ID: "h", Kind: model.KindGood}
	if got := Streak(h, s.lookup, today, 0); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestBadStreak(t *testing.T) {
	created := today.AddDate(0, 0, -20)
	h := model.Habit{ID: "b", Kind: model.KindBad, CreatedAt: created}

	tests := []struct {
		name string
		set  func(s statuses)
		want int
	}{
		{"clean since creation", func(s statuses) {}, 21},
		{"failed today", func(s statuses) { s.set("b", 0, model.StatusFailed) }, 0},
		{"failed four days ago", func(s statuses) { s.set("b", 4, model.StatusFailed) }, 4},
		{"skipped counts as avoided", func(s statuses) {
			s.set("b", 0, model.StatusSkipped)
			s.set("b", 1, model.StatusFailed)
		}, 1},
		{"completed breaks a bad streak", func(s statuses) { s.set("b", 2, model.StatusCompleted) }, 2},
		{"in-progress breaks a bad streak", func(s statuses) { s.set("b", 0, model.StatusInProgress) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := statuses{}
			tt.set(s)
			if got := Streak(h, s.lookup, today, DefaultMaxLookback); got != tt.want {
				t.Errorf("streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBadStreakIgnoresDaysBeforeCreation(t *testing.T) {
	h := model.Habit{ID: "b", Kind: model.KindBad, CreatedAt: today.AddDate(0, 0, -2)}
	s := statuses{}
	for ago := 3; ago <= 5; ago++ {
		s.set("b", ago, model.StatusSkipped)
	}

	// Avoided days recorded before the habit existed do not extend the walk.
	if got := Streak(h, s.lookup, today, DefaultMaxLookback); got != 3 {
		t.Errorf("streak = %d, want 3", got)
	}
	if got := DailyStreak([]model.Habit{h}, s.lookup, today, DefaultMaxLookback); got != 3 {
		t.Errorf("daily streak = %d, want 3", got)
	}

	h.CreatedAt = time.Time{}
	if got := Streak(h, s.lookup, today, 10); got != 10 {
		t.Errorf("streak without creation day = %d, want lookback cap 10", got)
	}
}

func TestStreakRespectsLookback(t *testing.T) {
	h := model.Habit{ID: "b", Kind: model.KindBad}
	s := statuses{}

	if got := Streak(h, s.lookup, today, 30); got != 30 {
		t.Errorf("streak = %d, want lookback cap 30", got)
	}
	if got := Streak(h, s.lookup, today, 0); got != DefaultMaxLookback {
		t.Errorf("streak = %d, want default cap %d", got, DefaultMaxLookback)
	}
}

func TestBestStreakMonotonic(t *testing.T) {
	h := model.Habit{ID: "h", Kind: model.KindGood}
	s := statuses{}
	best := 0
	mutations := []struct {
		ago int
		st  model.Status
	}{
		{0, model.StatusCompleted},
		{1, model.StatusCompleted},
		{2, model.StatusCompleted},
		{1, model.StatusFailed},
		{0, model.StatusNotStarted},
		{1, model.StatusCompleted},
	}
	for i, m := range mutations {
		s.set("h", m.ago, m.st)
		next := BestStreak(best, Streak(h, s.lookup, today, 0))
		if next < best {
			t.Fatalf("mutation %d: best decreased %d -> %d", i, best, next)
		}
		best = next
	}
	if best != 3 {
		t.Errorf("best = %d, want 3", best)
	}
}

func TestDailyStreakUsesAnySemantics(t *testing.T) {
	a := model.Habit{ID: "a", Kind: model.KindGood}
	b := model.Habit{ID: "b", Kind: model.KindGood}
	s := statuses{}
	s.set("a", 0, model.StatusCompleted)
	s.set("b", 1, model.StatusCompleted)
	s.set("a", 2, model.StatusCompleted)

	if got := DailyStreak([]model.Habit{a, b}, s.lookup, today, 0); got != 3 {
		t.Errorf("daily streak = %d, want 3", got)
	}
	if got := DailyStreak(nil, s.lookup, today, 0); got != 0 {
		t.Errorf("empty daily streak = %d, want 0", got)
	}
}

func TestDailyStreakBadHabitFloor(t *testing.T) {
	bad := model.Habit{ID: "b", Kind: model.KindBad, CreatedAt: today.AddDate(0, 0, -2)}
	s := statuses{}
	if got := DailyStreak([]model.Habit{bad}, s.lookup, today, 0); got != 3 {
		t.Errorf("daily streak = %d, want 3", got)
	}
}

func TestCompletionRate(t *testing.T) {
	h := model.Habit{ID: "h"}
	s := statuses{}
	for i := 0; i < 15; i++ {
		s.set("h", i*2, model.StatusCompleted)
	}
	s.set("h", 40, model.StatusCompleted)

	if got := CompletionRate(h, s.lookup, today, 30); got != 50 {
		t.Errorf("rate = %v, want 50", got)
	}
	if got := CompletionRate(h, s.lookup, today, 0); got != 0 {
		t.Errorf("rate over zero days = %v", got)
	}
}

func TestToggleDelta(t *testing.T) {
	tests := []struct {
		name     string
		kind     model.Kind
		from, to model.Status
		want     int
	}{
		{"good completed", model.KindGood, model.StatusNotStarted, model.StatusCompleted, 15},
		{"good uncompleted", model.KindGood, model.StatusCompleted, model.StatusNotStarted, -15},
		{"good skipped", model.KindGood, model.StatusNotStarted, model.StatusSkipped, 0},
		{"good failed", model.KindGood, model.StatusNotStarted, model.StatusFailed, 0},
		{"bad failed doubles", model.KindBad, model.StatusNotStarted, model.StatusFailed, 30},
		{"bad completed", model.KindBad, model.StatusNotStarted, model.StatusCompleted, 0},
		{"bad unfailed", model.KindBad, model.StatusFailed, model.StatusSkipped, -30},
		{"same status", model.KindGood, model.StatusCompleted, model.StatusCompleted, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToggleDelta(tt.kind, 15, tt.from, tt.to); got != tt.want {
				t.Errorf("delta = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHabitPoints(t *testing.T) {
	tests := []struct {
		base   int
		rate   float64
		streak int
		want   int
	}{
		{10, 100, 0, 10},
		{10, 50, 3, 11},
		{15, 10, 3, 8},
		{15, 0, 0, 0},
		{20, 33.3333, 1, 9},
	}
	for _, tt := range tests {
		if got := HabitPoints(tt.base, tt.rate, tt.streak); got != tt.want {
			t.Errorf("HabitPoints(%d, %v, %d) = %d, want %d", tt.base, tt.rate, tt.streak, got, tt.want)
		}
	}
}

func TestRecomputePoints(t *testing.T) {
	ex := model.Habit{ID: "ex", Kind: model.KindGood, Points: 15}
	s := statuses{}
	s.set("ex", 0, model.StatusCompleted)
	s.set("ex", 1, model.StatusCompleted)
	s.set("ex", 2, model.StatusCompleted)

	// rate = 3/30 = 10%, 15 * 0.1 + 3*2 = 7.5 -> 8
	if got := RecomputePoints([]model.Habit{ex}, s.lookup, today, 0); got != 8 {
		t.Errorf("points = %d, want 8", got)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		points, divisor, want int
	}{
		{0, LevelDivisorTracker, 1},
		{99, LevelDivisorTracker, 1},
		{100, LevelDivisorTracker, 2},
		{100, LevelDivisorLegacy, 3},
		{49, LevelDivisorLegacy, 1},
		{250, 0, 3},
		{-5, LevelDivisorLegacy, 1},
	}
	for _, tt := range tests {
		if got := Level(tt.points, tt.divisor); got != tt.want {
			t.Errorf("Level(%d, %d) = %d, want %d", tt.points, tt.divisor, got, tt.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("instant"); err != nil || s != StrategyInstant {
		t.Errorf("instant: %v %v", s, err)
	}
	if _, err := ParseStrategy("weekly"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestCalendar(t *testing.T) {
	a := model.Habit{ID: "a", Kind: model.KindGood, Active: true, TargetDays: []time.Weekday{time.Thursday}}
	b := model.Habit{ID: "b", Kind: model.KindBad, Active: true}
	s := statuses{}
	s.set("a", 0, model.StatusCompleted)
	s.set("b", 0, model.StatusFailed)

	days := Calendar([]model.Habit{a, b}, s.lookup, today)
	if len(days) != 31 {
		t.Fatalf("days = %d, want 31", len(days))
	}
	cell := days[14]
	if cell.Date != "2026-10-15" {
		t.Fatalf("cell date = %s", cell.Date)
	}
	if cell.Completed != 1 || cell.Failed != 1 || cell.Continuing != 1 {
		t.Errorf("cell = %+v", cell)
	}
	// 2026-10-15 is a Thursday: both habits are scheduled.
	if cell.Scheduled != 2 {
		t.Errorf("scheduled = %d, want 2", cell.Scheduled)
	}
	if days[13].Scheduled != 1 {
		t.Errorf("wednesday scheduled = %d, want 1", days[13].Scheduled)
	}
}

func TestSummarize(t *testing.T) {
	h := model.Habit{ID: "h", Name: "Read", Kind: model.KindGood, Points: 10, Goal: 4, BestStreak: 1}
	s := statuses{}
	s.set("h", 0, model.StatusCompleted)
	s.set("h", 1, model.StatusCompleted)

	sum := Summarize([]model.Habit{h}, s.lookup, today, 0)
	if len(sum) != 1 {
		t.Fatalf("len = %d", len(sum))
	}
	got := sum[0]
	if got.Streak != 2 || got.BestStreak != 2 {
		t.Errorf("streaks = %d/%d", got.Streak, got.BestStreak)
	}
	if got.GoalProgress != 50 {
		t.Errorf("goal progress = %v, want 50", got.GoalProgress)
	}
	if got.Today != model.StatusCompleted {
		t.Errorf("today = %q", got.Today)
	}
}
