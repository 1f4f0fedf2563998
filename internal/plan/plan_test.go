package plan

import (
	"testing"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

var fixedNow = time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)

func newTestBook() *Book {
	return NewBook(func() time.Time { return fixedNow })
}

func TestUpsertReplacesSameDate(t *testing.T) {
	b := newTestBook()
	b.Upsert(model.NightlyPlan{Date: "2026-10-15", Reflection: model.Reflection{Wins: "ran"}})
	b.Upsert(model.NightlyPlan{Date: "2026-10-15", Reflection: model.Reflection{Wins: "read"}})

	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1", b.Len())
	}
	p, ok := b.Get("2026-10-15")
	if !ok {
		t.Fatal("plan not found")
	}
	if p.Reflection.Wins != "read" {
		t.Errorf("wins = %q, want read", p.Reflection.Wins)
	}
	if !p.UpdatedAt.Equal(fixedNow) {
		t.Errorf("updated_at = %v", p.UpdatedAt)
	}
	if p.Priorities == nil {
		t.Error("priorities should be an empty slice, not nil")
	}
}

func TestListSortedByDate(t *testing.T) {
	b := newTestBook()
	for _, d := range []string{"2026-10-15", "2026-09-01", "2026-10-02"} {
		b.Upsert(model.NightlyPlan{Date: d})
	}
	got := b.List()
	want := []string{"2026-09-01", "2026-10-02", "2026-10-15"}
	for i := range want {
		if got[i].Date != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, got[i].Date, want[i])
		}
	}
}

func TestDelete(t *testing.T) {
	b := newTestBook()
	b.Upsert(model.NightlyPlan{Date: "2026-10-15"})

	if !b.Delete("2026-10-15") {
		t.Error("Delete returned false for existing plan")
	}
	if b.Delete("2026-10-15") {
		t.Error("Delete returned true for missing plan")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    model.NightlyPlan
		wantErr bool
	}{
		{"ok", model.NightlyPlan{Date: "2026-10-15", Priorities: []model.Priority{{Title: "ship"}}}, false},
		{"bad date", model.NightlyPlan{Date: "15/10/2026"}, true},
		{"blank priority", model.NightlyPlan{Date: "2026-10-15", Priorities: []model.Priority{{Title: " "}}}, true},
		{"sleep hours", model.NightlyPlan{Date: "2026-10-15", SleepPlan: model.SleepPlan{TargetHours: 30}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.plan); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReplaceDropsBadDates(t *testing.T) {
	b := newTestBook()
	dropped := b.Replace([]model.NightlyPlan{{Date: "2026-10-15"}, {Date: "yesterday"}})
	if dropped != 1 || b.Len() != 1 {
		t.Errorf("dropped = %d, len = %d", dropped, b.Len())
	}
}
