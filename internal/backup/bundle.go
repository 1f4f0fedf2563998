// Package backup produces and reads full-state export documents, optionally
// sealed with a passphrase, and ships them to S3-compatible storage.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// FormatVersion is written into every export.
const FormatVersion = 1

var ErrVersion = errors.New("backup: export was written by a newer version")

// Document is the full-state export.
type Document struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Habits     []model.Habit       `json:"habits"`
	Entries    []model.EntryPair   `json:"entries"`
	GameState  model.GameState     `json:"gameState"`
	Categories []model.Category    `json:"categories,omitempty"`
	Plans      []model.NightlyPlan `json:"plans,omitempty"`
}

// Filename is the download name of an export taken at t.
func Filename(t time.Time) string {
	return "habiti-backup-" + t.Format(model.DateLayout) + ".json"
}

// Encode renders doc as indented JSON.
func Encode(doc Document) ([]byte, error) {
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Habits == nil {
		doc.Habits = []model.Habit{}
	}
	if doc.Entries == nil {
		doc.Entries = []model.EntryPair{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// rawDocument defers decoding of the record lists so one bad record does not
// reject the whole file.
type rawDocument struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Habits     []json.RawMessage `json:"habits"`
	Entries    []json.RawMessage `json:"entries"`
	GameState  *model.GameState  `json:"gameState"`
	Categories []model.Category  `json:"categories"`
	Plans      []json.RawMessage `json:"plans"`
}

// Decoded is a parsed export plus the records that had to be dropped.
type Decoded struct {
	Document
	Skipped []error
}

// Decode parses an export. Malformed habits, entries and plans are skipped
// and reported in Skipped. A missing game state decodes to a fresh one.
func Decode(data []byte) (Decoded, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("decode export: %w", err)
	}
	if raw.Version > FormatVersion {
		return Decoded{}, fmt.Errorf("%w: version %d", ErrVersion, raw.Version)
	}

	out := Decoded{Document: Document{
		Version:    raw.Version,
		ExportedAt: raw.ExportedAt,
		Categories: raw.Categories,
	}}
	if raw.GameState != nil {
		out.GameState = *raw.GameState
	} else {
		out.GameState = model.NewGameState()
	}

	for i, msg := range raw.Habits {
		var h model.Habit
		if err := json.Unmarshal(msg, &h); err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("habit %d: %w", i, err))
			continue
		}
		out.Habits = append(out.Habits, h)
	}
	for i, msg := range raw.Entries {
		var p model.EntryPair
		if err := json.Unmarshal(msg, &p); err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		out.Entries = append(out.Entries, p)
	}
	for i, msg := range raw.Plans {
		var p model.NightlyPlan
		if err := json.Unmarshal(msg, &p); err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("plan %d: %w", i, err))
			continue
		}
		out.Plans = append(out.Plans, p)
	}
	return out, nil
}
