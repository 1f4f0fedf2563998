package dating

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStartTournamentSeedsByAffection(t *testing.T) {
	g := gameWithProfiles(t, 10, 50, 30, 20)

	tr, err := g.StartTournament("t1", "", nil, fixedNow)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if diff := cmp.Diff([]string{"p2", "p3", "p4", "p1"}, tr.Seeds); diff != "" {
		t.Errorf("seeds mismatch (-want +got):\n%s", diff)
	}
	want := []Match{{A: "p2", B: "p1"}, {A: "p3", B: "p4"}}
	if diff := cmp.Diff(want, tr.Rounds[0]); diff != "" {
		t.Errorf("first round mismatch (-want +got):\n%s", diff)
	}
	if tr.Name != "Tournament 1" {
		t.Errorf("name = %q", tr.Name)
	}
}

func TestTournamentByes(t *testing.T) {
	g := gameWithProfiles(t, 30, 20, 10)

	tr, err := g.StartTournament("t1", "Cup", nil, fixedNow)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	first := tr.Rounds[0]
	if len(first) != 2 || !first[0].Bye() || first[0].Winner != "p1" {
		t.Fatalf("first round = %+v", first)
	}
	if _, err := g.RecordWinner("t1", 0, "p1"); !errors.Is(err, ErrInvalid) {
		t.Errorf("recording a bye err = %v", err)
	}

	tr, err = g.RecordWinner("t1", 1, "p3")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(tr.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(tr.Rounds))
	}
	if diff := cmp.Diff([]Match{{A: "p1", B: "p3"}}, tr.Rounds[1]); diff != "" {
		t.Errorf("final mismatch (-want +got):\n%s", diff)
	}

	tr, err = g.RecordWinner("t1", 0, "p3")
	if err != nil {
		t.Fatalf("record final: %v", err)
	}
	if tr.Champion != "p3" {
		t.Errorf("champion = %q, want p3", tr.Champion)
	}
	if _, err := g.RecordWinner("t1", 0, "p1"); !errors.Is(err, ErrTournamentOver) {
		t.Errorf("after champion err = %v", err)
	}
}

func TestRecordWinnerValidation(t *testing.T) {
	g := gameWithProfiles(t, 1, 2)
	if _, err := g.StartTournament("t1", "", nil, fixedNow); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := g.RecordWinner("nope", 0, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown tournament err = %v", err)
	}
	if _, err := g.RecordWinner("t1", 3, "p1"); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad match err = %v", err)
	}
	if _, err := g.RecordWinner("t1", 0, "p9"); !errors.Is(err, ErrInvalid) {
		t.Errorf("outsider err = %v", err)
	}
}

func TestTooFewEntrants(t *testing.T) {
	g := gameWithProfiles(t, 1, 2)
	if _, err := g.StartTournament("t1", "", []string{"p1", "p1", "ghost"}, fixedNow); !errors.Is(err, ErrTooFewEntrants) {
		t.Errorf("err = %v, want ErrTooFewEntrants", err)
	}
}

func TestTournamentSnapshotIsDetached(t *testing.T) {
	g := gameWithProfiles(t, 1, 2)
	if _, err := g.StartTournament("t1", "", nil, fixedNow); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, ok := g.Tournament("t1")
	if !ok {
		t.Fatal("tournament not found")
	}

	decided, err := g.RecordWinner("t1", 0, "p1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if snap.Rounds[0][0].Winner != "" || snap.Champion != "" {
		t.Errorf("snapshot changed after RecordWinner: %+v", snap.Rounds[0][0])
	}

	decided.Rounds[0][0].Winner = "p2"
	decided.Seeds[0] = "x"
	stored, _ := g.Tournament("t1")
	if stored.Rounds[0][0].Winner != "p1" || stored.Seeds[0] == "x" {
		t.Errorf("stored bracket changed through returned value: %+v", stored)
	}
}
