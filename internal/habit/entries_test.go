package habit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

func newTestLog() *EntryLog {
	return NewEntryLog(func() time.Time { return fixedNow })
}

func TestStatusDefaultsToNotStarted(t *testing.T) {
	l := newTestLog()
	if got := l.Status("h1", "2026-10-15"); got != model.StatusNotStarted {
		t.Errorf("status = %q, want not-started", got)
	}
}

func TestSetStatusOverwrites(t *testing.T) {
	l := newTestLog()

	prev := l.SetStatus("h1", "2026-10-15", model.StatusInProgress)
	if prev != model.StatusNotStarted {
		t.Errorf("prev = %q, want not-started", prev)
	}
	prev = l.SetStatus("h1", "2026-10-15", model.StatusFailed)
	if prev != model.StatusInProgress {
		t.Errorf("prev = %q, want in-progress", prev)
	}
	if got := l.Status("h1", "2026-10-15"); got != model.StatusFailed {
		t.Errorf("status = %q, want failed", got)
	}
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1", l.Len())
	}
}

func TestToggleOnlyFlipsCompleted(t *testing.T) {
	l := newTestLog()

	if got := l.Toggle("h1", "2026-10-15"); got != model.StatusCompleted {
		t.Errorf("first toggle = %q, want completed", got)
	}
	if got := l.Toggle("h1", "2026-10-15"); got != model.StatusNotStarted {
		t.Errorf("second toggle = %q, want not-started", got)
	}

	l.SetStatus("h1", "2026-10-14", model.StatusSkipped)
	if got := l.Toggle("h1", "2026-10-14"); got != model.StatusCompleted {
		t.Errorf("toggle from skipped = %q, want completed", got)
	}
}

func TestSetDetailsKeepsStatus(t *testing.T) {
	l := newTestLog()
	l.SetStatus("h1", "2026-10-15", model.StatusCompleted)

	mood := "great"
	minutes := 25
	e := l.SetDetails("h1", "2026-10-15", EntryDetails{
		Mood:      &mood,
		TimeSpent: &minutes,
		Proof:     &model.Proof{Image: "img/run.png", Note: "5k"},
	})

	if e.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", e.Status)
	}
	if e.Mood != "great" || e.TimeSpent != 25 || e.Proof == nil || e.Proof.Note != "5k" {
		t.Errorf("entry = %+v", e)
	}

	fresh := l.SetDetails("h2", "2026-10-15", EntryDetails{Mood: &mood})
	if fresh.Status != model.StatusNotStarted {
		t.Errorf("fresh status = %q, want not-started", fresh.Status)
	}
}

func TestRemoveHabitCascades(t *testing.T) {
	l := newTestLog()
	l.SetStatus("h1", "2026-10-14", model.StatusCompleted)
	l.SetStatus("h1", "2026-10-15", model.StatusCompleted)
	l.SetStatus("h2", "2026-10-15", model.StatusCompleted)

	if n := l.RemoveHabit("h1"); n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if len(l.ForHabit("h1")) != 0 {
		t.Error("h1 entries remain")
	}
	if len(l.ForHabit("h2")) != 1 {
		t.Error("h2 entries removed")
	}
}

func TestPairsRoundTrip(t *testing.T) {
	l := newTestLog()
	l.SetStatus("3f2a-uuid", "2026-10-14", model.StatusCompleted)
	l.SetStatus("3f2a-uuid", "2026-10-15", model.StatusSkipped)

	data, err := json.Marshal(l.Pairs())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var pairs []model.EntryPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := newTestLog()
	if dropped := restored.Replace(pairs); dropped != 0 {
		t.Errorf("dropped = %d", dropped)
	}
	if got := restored.Status("3f2a-uuid", "2026-10-15"); got != model.StatusSkipped {
		t.Errorf("status = %q, want skipped", got)
	}
	if restored.Len() != 2 {
		t.Errorf("len = %d, want 2", restored.Len())
	}
}

func TestReplaceFillsFromKey(t *testing.T) {
	l := newTestLog()
	dropped := l.Replace([]model.EntryPair{
		{Key: "h1|2026-10-15", Entry: model.Entry{Status: model.StatusCompleted}},
		{Key: "garbage", Entry: model.Entry{Status: model.StatusCompleted}},
		{Key: "h2|2026-10-15", Entry: model.Entry{Status: "done"}},
	})

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if got := l.Status("h1", "2026-10-15"); got != model.StatusCompleted {
		t.Errorf("h1 status = %q", got)
	}
	if got := l.Status("h2", "2026-10-15"); got != model.StatusNotStarted {
		t.Errorf("invalid status not reset: %q", got)
	}
}
