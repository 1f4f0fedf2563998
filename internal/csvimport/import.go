// Package csvimport turns a six-column habit spreadsheet export into habits.
//
// Columns, in order: "category / subcategory", name, details, rating
// (e.g. "-3 first / -4 repeat"), type (good or bad) and time frame.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/habiti/internal/habit"
	"github.com/dukerupert/habiti/internal/model"
)

const numColumns = 6

var (
	ErrColumns = errors.New("csvimport: row has too few columns")
	ErrName    = errors.New("csvimport: row has no name")
	ErrKind    = errors.New("csvimport: type must be good or bad")
)

// Result reports how many rows became habits and why the others did not.
type Result struct {
	Imported int     `json:"imported"`
	Errors   []error `json:"-"`
}

// Messages renders Errors for JSON responses.
func (r Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

// RowError ties a failure to its 1-based line in the input.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Row is one parsed line, ready to be added to a registry.
type Row struct {
	Line        int
	Category    string
	Subcategory string
	Input       habit.HabitInput
}

// Parse reads every row of r. Rows that cannot be mapped are returned as
// RowErrors; the rest of the file is still read. A first row of column
// titles is skipped.
func Parse(r io.Reader) ([]Row, []error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows []Row
		errs []error
	)
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				errs = append(errs, &RowError{Line: pe.StartLine, Err: err})
				continue
			}
			errs = append(errs, fmt.Errorf("csvimport: read: %w", err))
			break
		}
		line, _ := cr.FieldPos(0)
		if first && isHeader(rec) {
			continue
		}
		if blank(rec) {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			errs = append(errs, &RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, errs
}

// Import parses r and adds each row to reg, creating any missing taxonomy
// nodes along the way. Row failures are logged and collected in the result.
func Import(r io.Reader, reg *habit.Registry, logger *slog.Logger) Result {
	rows, errs := Parse(r)
	for _, err := range errs {
		logger.Warn("skipping csv row", "error", err)
	}

	res := Result{Errors: errs}
	for _, row := range rows {
		in := row.Input
		catID, subID, _, _ := reg.EnsurePath(row.Category, row.Subcategory, "")
		in.Category = catID
		in.Subcategory = subID
		h := reg.Add(in)
		logger.Debug("imported habit", "line", row.Line, "id", h.ID, "name", h.Name)
		res.Imported++
	}
	return res
}

// isHeader reports whether the first row is column titles rather than data.
// Rows with a blank type or a numeric rating are data and go through
// parseRow, so a bad type there is reported instead of dropped.
func isHeader(rec []string) bool {
	if len(rec) < numColumns {
		return false
	}
	k := strings.ToLower(strings.TrimSpace(rec[4]))
	switch k {
	case "type", "kind":
		return true
	case "", string(model.KindGood), string(model.KindBad):
		return false
	}
	return !signedInt.MatchString(rec[3])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(rec []string) (Row, error) {
	if len(rec) < numColumns {
		return Row{}, fmt.Errorf("%w: got %d, want %d", ErrColumns, len(rec), numColumns)
	}
	name := strings.TrimSpace(rec[1])
	if name == "" {
		return Row{}, ErrName
	}

	var kind model.Kind
	switch strings.ToLower(strings.TrimSpace(rec[4])) {
	case "good", "":
		kind = model.KindGood
	case "bad":
		kind = model.KindBad
	default:
		return Row{}, fmt.Errorf("%w: %q", ErrKind, rec[4])
	}

	cat, sub := splitPath(rec[0])
	details := strings.TrimSpace(rec[2])
	diff, points := rate(magnitude(rec[3]))
	freq, days := frequency(rec[5])

	return Row{
		Category:    cat,
		Subcategory: sub,
		Input: habit.HabitInput{
			Name:        name,
			Description: details,
			Kind:        kind,
			Difficulty:  diff,
			Group:       sub,
			Icon:        DetectIcon(name + " " + details + " " + cat),
			Points:      points,
			Frequency:   freq,
			TargetDays:  days,
			TimeFrame:   strings.TrimSpace(rec[5]),
		},
	}, nil
}

// splitPath splits "Category / Subcategory" into its trimmed parts.
func splitPath(s string) (category, subcategory string) {
	category, subcategory, _ = strings.Cut(s, "/")
	return strings.TrimSpace(category), strings.TrimSpace(subcategory)
}

var signedInt = regexp.MustCompile(`[-+]?\d+`)

// magnitude is the absolute value of the first signed integer in s, or 0.
func magnitude(s string) int {
	m := signedInt.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	if n < 0 {
		n = -n
	}
	return n
}

// rate maps a rating magnitude onto difficulty and base points. A missing
// rating counts as medium.
func rate(mag int) (model.Difficulty, int) {
	switch {
	case mag <= 0:
		return model.DifficultyMedium, 10
	case mag <= 2:
		return model.DifficultyEasy, 5
	case mag == 3:
		return model.DifficultyMedium, 10
	case mag == 4:
		return model.DifficultyHard, 15
	default:
		return model.DifficultyExpert, 20
	}
}

var dayNames = []struct {
	name string
	day  time.Weekday
}{
	{"sunday", time.Sunday},
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
}

// frequency reads the time-frame column. Named days, "weekdays" and
// "weekends" give a custom day set; "weekly" and "once a week" give weekly;
// everything else, "everyday" included, is daily.
func frequency(s string) (model.Frequency, []time.Weekday) {
	text := strings.ToLower(s)

	set := map[time.Weekday]bool{}
	if strings.Contains(text, "weekdays") {
		for d := time.Monday; d <= time.Friday; d++ {
			set[d] = true
		}
	}
	if strings.Contains(text, "weekend") {
		set[time.Saturday] = true
		set[time.Sunday] = true
	}
	for _, dn := range dayNames {
		if strings.Contains(text, dn.name) {
			set[dn.day] = true
		}
	}
	if len(set) > 0 && len(set) < len(model.AllDays) {
		var days []time.Weekday
		for _, d := range model.AllDays {
			if set[d] {
				days = append(days, d)
			}
		}
		return model.FrequencyCustom, days
	}

	if strings.Contains(text, "weekly") || strings.Contains(text, "once a week") {
		return model.FrequencyWeekly, append([]time.Weekday(nil), model.AllDays...)
	}
	return model.FrequencyDaily, append([]time.Weekday(nil), model.AllDays...)
}
