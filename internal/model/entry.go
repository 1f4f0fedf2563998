package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// DateLayout is the calendar-day format used for entry keys and plans.
const DateLayout = "2006-01-02"

// DateOf formats t as a calendar day in its own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type Proof struct {
	Image string `json:"image,omitempty"`
	Note  string `json:"note,omitempty"`
}

type Entry struct {
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"`
	Status    Status    `json:"status"`
	Mood      string    `json:"mood,omitempty"`
	TimeSpent int       `json:"time_spent,omitempty"`
	Quantity  float64   `json:"quantity,omitempty"`
	Proof     *Proof    `json:"proof,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryKey builds the composite map key for a habit and day.
func EntryKey(habitID, date string) string {
	return habitID + "|" + date
}

// SplitEntryKey is the inverse of EntryKey.
func SplitEntryKey(key string) (habitID, date string, ok bool) {
	i := strings.LastIndexByte(key, '|')
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// EntryPair is one element of the serialized entry map. It encodes as a
// two-element JSON array: [key, entry].
type EntryPair struct {
	Key   string
	Entry Entry
}

func (p EntryPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Key, p.Entry})
}

func (p *EntryPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("entry pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("entry pair: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("entry pair key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Entry); err != nil {
		return fmt.Errorf("entry pair value: %w", err)
	}
	return nil
}
