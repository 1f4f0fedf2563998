package dating

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTooFewEntrants = errors.New("dating: a tournament needs at least two profiles")
	ErrTournamentOver = errors.New("dating: tournament already has a champion")
)

// Match pairs two profiles. An empty B is a bye and A advances.
type Match struct {
	A      string `json:"a"`
	B      string `json:"b,omitempty"`
	Winner string `json:"winner,omitempty"`
}

func (m Match) Bye() bool { return m.B == "" }

// Tournament is a single-elimination bracket.
type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Seeds     []string  `json:"seeds"`
	Rounds    [][]Match `json:"rounds"`
	Champion  string    `json:"champion,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Current returns the index of the round still being played.
func (t *Tournament) Current() int {
	return len(t.Rounds) - 1
}

// clone copies the bracket so callers never share rounds with the game.
func (t Tournament) clone() Tournament {
	t.Seeds = append([]string(nil), t.Seeds...)
	rounds := make([][]Match, len(t.Rounds))
	for i, r := range t.Rounds {
		rounds[i] = append([]Match(nil), r...)
	}
	t.Rounds = rounds
	return t
}

func (g *Game) tournamentIndex(id string) int {
	for i := range g.Tournaments {
		if g.Tournaments[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Game) Tournament(id string) (Tournament, bool) {
	if i := g.tournamentIndex(id); i >= 0 {
		return g.Tournaments[i].clone(), true
	}
	return Tournament{}, false
}

// StartTournament seeds the named profiles (all when ids is empty) by
// affection and builds the first round. The bracket is padded to a power of
// two; the top seeds get the byes.
func (g *Game) StartTournament(id, name string, ids []string, now time.Time) (Tournament, error) {
	if len(ids) == 0 {
		ids = nil
	}
	entrants := g.ranked(ids)
	if len(entrants) < 2 {
		return Tournament{}, ErrTooFewEntrants
	}

	seeds := make([]string, len(entrants))
	for i, p := range entrants {
		seeds[i] = p.ID
	}
	size := 1
	for size < len(seeds) {
		size *= 2
	}

	first := make([]Match, 0, size/2)
	for i := 0; i < size/2; i++ {
		m := Match{A: seeds[i]}
		if j := size - 1 - i; j < len(seeds) {
			m.B = seeds[j]
		} else {
			m.Winner = m.A
		}
		first = append(first, m)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Tournament %d", len(g.Tournaments)+1)
	}
	t := Tournament{
		ID:        id,
		Name:      name,
		Seeds:     seeds,
		Rounds:    [][]Match{first},
		CreatedAt: now,
	}
	t.advance()
	g.Tournaments = append(g.Tournaments, t)
	return t.clone(), nil
}

// RecordWinner decides match index of the current round. When every match
// of the round is decided the next round is drawn, and the last remaining
// profile becomes champion.
func (g *Game) RecordWinner(tournamentID string, match int, winner string) (Tournament, error) {
	ti := g.tournamentIndex(tournamentID)
	if ti < 0 {
		return Tournament{}, fmt.Errorf("tournament %s: %w", tournamentID, ErrNotFound)
	}
	t := &g.Tournaments[ti]
	if t.Champion != "" {
		return t.clone(), ErrTournamentOver
	}
	round := t.Rounds[t.Current()]
	if match < 0 || match >= len(round) {
		return t.clone(), fmt.Errorf("%w: match %d", ErrInvalid, match)
	}
	m := &round[match]
	if m.Bye() {
		return t.clone(), fmt.Errorf("%w: match %d is a bye", ErrInvalid, match)
	}
	if winner != m.A && winner != m.B {
		return t.clone(), fmt.Errorf("%w: %s is not in match %d", ErrInvalid, winner, match)
	}
	m.Winner = winner
	t.advance()
	return t.clone(), nil
}

// advance draws new rounds while the current one is fully decided.
func (t *Tournament) advance() {
	for t.Champion == "" {
		round := t.Rounds[t.Current()]
		winners := make([]string, 0, len(round))
		for _, m := range round {
			if m.Winner == "" {
				return
			}
			winners = append(winners, m.Winner)
		}
		if len(winners) == 1 {
			t.Champion = winners[0]
			return
		}
		next := make([]Match, 0, len(winners)/2)
		for i := 0; i+1 < len(winners); i += 2 {
			next = append(next, Match{A: winners[i], B: winners[i+1]})
		}
		t.Rounds = append(t.Rounds, next)
	}
}
