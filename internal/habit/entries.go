package habit

import (
	"sort"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// EntryDetails are the non-status fields of an entry.
type EntryDetails struct {
	Mood      *string      `json:"mood,omitempty"`
	TimeSpent *int         `json:"time_spent,omitempty"`
	Quantity  *float64     `json:"quantity,omitempty"`
	Proof     *model.Proof `json:"proof,omitempty"`
}

// EntryLog maps (habitID, date) to the latest entry for that day. Setting a
// status overwrites the previous one; no history is kept.
type EntryLog struct {
	entries map[string]model.Entry
	now     func() time.Time
}

func NewEntryLog(now func() time.Time) *EntryLog {
	if now == nil {
		now = time.Now
	}
	return &EntryLog{entries: make(map[string]model.Entry), now: now}
}

// Status returns the status for the day, not-started when nothing was
// recorded.
func (l *EntryLog) Status(habitID, date string) model.Status {
	if e, ok := l.entries[model.EntryKey(habitID, date)]; ok && e.Status != "" {
		return e.Status
	}
	return model.StatusNotStarted
}

func (l *EntryLog) Get(habitID, date string) (model.Entry, bool) {
	e, ok := l.entries[model.EntryKey(habitID, date)]
	return e, ok
}

// SetStatus upserts the entry for the day and returns the previous status.
func (l *EntryLog) SetStatus(habitID, date string, status model.Status) model.Status {
	key := model.EntryKey(habitID, date)
	prev := l.Status(habitID, date)
	e, ok := l.entries[key]
	if !ok {
		e = model.Entry{HabitID: habitID, Date: date}
	}
	e.Status = status
	e.UpdatedAt = l.now()
	l.entries[key] = e
	return prev
}

// Toggle flips the day between completed and not-started and returns the
// new status.
func (l *EntryLog) Toggle(habitID, date string) model.Status {
	next := model.StatusCompleted
	if l.Status(habitID, date) == model.StatusCompleted {
		next = model.StatusNotStarted
	}
	l.SetStatus(habitID, date, next)
	return next
}

// SetDetails merges d into the day's entry, creating a not-started entry when
// none exists.
func (l *EntryLog) SetDetails(habitID, date string, d EntryDetails) model.Entry {
	key := model.EntryKey(habitID, date)
	e, ok := l.entries[key]
	if !ok {
		e = model.Entry{HabitID: habitID, Date: date, Status: model.StatusNotStarted}
	}
	if d.Mood != nil {
		e.Mood = *d.Mood
	}
	if d.TimeSpent != nil {
		e.TimeSpent = *d.TimeSpent
	}
	if d.Quantity != nil {
		e.Quantity = *d.Quantity
	}
	if d.Proof != nil {
		p := *d.Proof
		e.Proof = &p
	}
	e.UpdatedAt = l.now()
	l.entries[key] = e
	return e
}

// RemoveHabit deletes every entry of habitID and returns how many went.
func (l *EntryLog) RemoveHabit(habitID string) int {
	n := 0
	for k, e := range l.entries {
		if e.HabitID == habitID {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// ForHabit returns the habit's entries sorted by date.
func (l *EntryLog) ForHabit(habitID string) []model.Entry {
	var out []model.Entry
	for _, e := range l.entries {
		if e.HabitID == habitID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (l *EntryLog) Len() int {
	return len(l.entries)
}

// Pairs returns the log as [key, entry] pairs sorted by key.
func (l *EntryLog) Pairs() []model.EntryPair {
	out := make([]model.EntryPair, 0, len(l.entries))
	for k, e := range l.entries {
		out = append(out, model.EntryPair{Key: k, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Replace rebuilds the log from pairs. The entry's own habit id and date win
// over the key; pairs missing both are dropped. It returns the number of
// dropped pairs.
func (l *EntryLog) Replace(pairs []model.EntryPair) int {
	l.entries = make(map[string]model.Entry, len(pairs))
	dropped := 0
	for _, p := range pairs {
		e := p.Entry
		if e.HabitID == "" || e.Date == "" {
			habitID, date, ok := model.SplitEntryKey(p.Key)
			if !ok {
				dropped++
				continue
			}
			if e.HabitID == "" {
				e.HabitID = habitID
			}
			if e.Date == "" {
				e.Date = date
			}
		}
		if !e.Status.Valid() {
			e.Status = model.StatusNotStarted
		}
		l.entries[model.EntryKey(e.HabitID, e.Date)] = e
	}
	return dropped
}

// Lookup adapts the log to the scoring engine's status source.
func (l *EntryLog) Lookup() func(habitID, date string) model.Status {
	return l.Status
}
