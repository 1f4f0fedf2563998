package dating

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dukerupert/habiti/internal/database"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
)

func setupService(t *testing.T) (*Service, *store.SlotStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	slots := store.NewSlotStore(db)
	return NewService(slots, slog.New(slog.NewTextHandler(io.Discard, nil))), slots
}

func TestServicePersists(t *testing.T) {
	ctx := context.Background()
	svc, slots := setupService(t)

	p, err := svc.AddProfile(ctx, ProfileInput{Name: "Ana", Age: 29, Traits: []string{"funny", " "}})
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}
	if len(p.Traits) != 1 {
		t.Errorf("traits = %v", p.Traits)
	}
	if _, _, err := svc.Interact(ctx, InteractionInput{ProfileID: p.ID, Kind: "dinner", Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("interact: %v", err)
	}

	reloaded := NewService(slots, nil)
	reloaded.Load(ctx)
	if len(reloaded.Profiles()) != 1 || len(reloaded.Interactions(p.ID)) != 1 {
		t.Errorf("reloaded = %d profiles, %d interactions", len(reloaded.Profiles()), len(reloaded.Interactions(p.ID)))
	}
	if reloaded.Stats().TotalPoints != 10 {
		t.Errorf("points = %d", reloaded.Stats().TotalPoints)
	}
}

func TestServiceRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	if _, err := svc.AddProfile(ctx, ProfileInput{}); err == nil {
		t.Error("expected profile validation error")
	}
	if _, err := svc.AddChallenge(ctx, ChallengeInput{Title: "x"}); err == nil {
		t.Error("expected challenge validation error")
	}
	if len(svc.Profiles()) != 0 || len(svc.Challenges()) != 0 {
		t.Error("invalid input was stored")
	}
}

func TestHabitStatusChanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	bad := model.Habit{ID: "b", Kind: model.KindBad, Points: 10}

	if got := svc.HabitStatusChanged(ctx, bad, model.StatusFailed); got != 20 {
		t.Errorf("failed bad habit = %d, want 20", got)
	}
	if got := svc.HabitStatusChanged(ctx, bad, model.StatusCompleted); got != 0 {
		t.Errorf("completed bad habit = %d, want 0", got)
	}
	if svc.Stats().TotalPoints != 20 {
		t.Errorf("points = %d, want 20", svc.Stats().TotalPoints)
	}
}

func TestHabitStatusChangedAccumulates(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	good := model.Habit{ID: "g", Kind: model.KindGood, Points: 10}
	bad := model.Habit{ID: "b", Kind: model.KindBad, Points: 5}

	// Rewards are never taken back, so flipping a status back and forth
	// keeps paying out.
	for range 3 {
		svc.HabitStatusChanged(ctx, good, model.StatusCompleted)
		if got := svc.HabitStatusChanged(ctx, good, model.StatusNotStarted); got != 0 {
			t.Errorf("uncompleting good habit = %d, want 0", got)
		}
		svc.HabitStatusChanged(ctx, bad, model.StatusSkipped)
		svc.HabitStatusChanged(ctx, bad, model.StatusNotStarted)
	}
	if got := svc.Stats().TotalPoints; got != 3*10+6*5 {
		t.Errorf("points = %d, want %d", got, 3*10+6*5)
	}
}

func TestServiceTournamentConcurrentReads(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	var ids []string
	for _, name := range []string{"Ana", "Bea", "Cat", "Dee"} {
		p, err := svc.AddProfile(ctx, ProfileInput{Name: name, Age: 30})
		if err != nil {
			t.Fatalf("add profile: %v", err)
		}
		ids = append(ids, p.ID)
	}
	tr, err := svc.StartTournament(ctx, "", ids)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i, m := range tr.Rounds[0] {
			if _, err := svc.RecordWinner(ctx, tr.ID, i, m.A); err != nil {
				t.Errorf("record match %d: %v", i, err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			snap, _ := svc.Tournament(tr.ID)
			if _, err := json.Marshal(snap); err != nil {
				t.Errorf("encode: %v", err)
			}
			for _, s := range svc.Tournaments() {
				json.Marshal(s)
			}
		}
	}()
	wg.Wait()

	got, _ := svc.Tournament(tr.ID)
	if len(got.Rounds) != 2 {
		t.Errorf("rounds = %d, want 2", len(got.Rounds))
	}
}

func TestServiceTournamentFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	a, _ := svc.AddProfile(ctx, ProfileInput{Name: "Ana", Age: 29})
	b, _ := svc.AddProfile(ctx, ProfileInput{Name: "Bea", Age: 31})

	tr, err := svc.StartTournament(ctx, "Spring", []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	tr, err = svc.RecordWinner(ctx, tr.ID, 0, b.ID)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if tr.Champion != b.ID {
		t.Errorf("champion = %q", tr.Champion)
	}
	got, ok := svc.Tournament(tr.ID)
	if !ok || got.Champion != b.ID {
		t.Errorf("stored tournament = %+v", got)
	}
}
