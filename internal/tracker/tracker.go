// Package tracker is the habit tracker's state container. It owns the habit
// registry, the entry log, the plan book and the game state, keeps derived
// fields current after every mutation and snapshots touched collections to
// the slot store.
package tracker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/habiti/internal/achievement"
	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/csvimport"
	"github.com/dukerupert/habiti/internal/habit"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/plan"
	"github.com/dukerupert/habiti/internal/scoring"
	"github.com/dukerupert/habiti/internal/store"
)

// Slots is the persistence the tracker writes through. *store.SlotStore
// implements it.
type Slots interface {
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
}

// ChangeFunc is told about every committed mutation.
type ChangeFunc func(entity, action, id string, extra map[string]any)

// StatusFunc is told about every habit status change, after it is recorded.
type StatusFunc func(ctx context.Context, h model.Habit, status model.Status)

type Config struct {
	Strategy     scoring.Strategy
	LevelDivisor int
	MaxLookback  int
}

func (c *Config) applyDefaults() {
	if c.Strategy == "" {
		c.Strategy = scoring.StrategyRecompute
	}
	if c.LevelDivisor <= 0 {
		c.LevelDivisor = scoring.LevelDivisorTracker
	}
	if c.MaxLookback <= 0 {
		c.MaxLookback = scoring.DefaultMaxLookback
	}
}

type Option func(*Tracker)

// WithClock replaces the time source used for "today" and timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDFunc replaces the habit id generator.
func WithIDFunc(f func() string) Option {
	return func(t *Tracker) { t.regOpts = append(t.regOpts, habit.WithIDFunc(f)) }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithChangeFunc registers a listener for committed mutations.
func WithChangeFunc(f ChangeFunc) Option {
	return func(t *Tracker) { t.onChange = f }
}

// WithStatusFunc registers a listener for habit status changes.
func WithStatusFunc(f StatusFunc) Option {
	return func(t *Tracker) { t.onStatus = f }
}

// WithAchievements replaces the default achievement catalogue.
func WithAchievements(defs []achievement.Definition) Option {
	return func(t *Tracker) { t.defs = defs }
}

// Tracker is safe for concurrent use; every method takes the same lock.
type Tracker struct {
	mu       sync.Mutex
	cfg      Config
	slots    Slots
	logger   *slog.Logger
	now      func() time.Time
	onChange ChangeFunc
	onStatus StatusFunc
	defs     []achievement.Definition
	regOpts  []habit.Option

	registry *habit.Registry
	entries  *habit.EntryLog
	plans    *plan.Book
	state    model.GameState
}

func New(slots Slots, cfg Config, opts ...Option) *Tracker {
	cfg.applyDefaults()
	t := &Tracker{
		cfg:    cfg,
		slots:  slots,
		logger: slog.Default(),
		now:    time.Now,
		defs:   achievement.Defaults(),
		state:  model.NewGameState(),
	}
	for _, o := range opts {
		o(t)
	}
	t.logger = t.logger.With("component", "tracker")
	t.registry = habit.NewRegistry(append([]habit.Option{habit.WithClock(t.now)}, t.regOpts...)...)
	t.entries = habit.NewEntryLog(t.now)
	t.plans = plan.NewBook(t.now)
	return t
}

// Config returns the scoring configuration in effect.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Load reads every slot, applying defaults to missing or outdated data, and
// recomputes derived fields. Corrupt or unreadable slots are logged and the
// collection starts empty.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var habits []model.Habit
	t.load(ctx, store.SlotHabits, &habits)
	if n := t.registry.Replace(habits); n > 0 {
		t.logger.Info("migrated habits", "count", n)
		t.save(ctx, store.SlotHabits)
	}

	var pairs []model.EntryPair
	t.load(ctx, store.SlotEntries, &pairs)
	if n := t.entries.Replace(pairs); n > 0 {
		t.logger.Warn("dropped malformed entries", "count", n)
	}

	var cats []model.Category
	t.load(ctx, store.SlotCategories, &cats)
	t.registry.ReplaceCategories(cats)

	var plans []model.NightlyPlan
	t.load(ctx, store.SlotPlans, &plans)
	if n := t.plans.Replace(plans); n > 0 {
		t.logger.Warn("dropped malformed plans", "count", n)
	}

	state := model.NewGameState()
	t.load(ctx, store.SlotGameState, &state)
	if state.Unlocked == nil {
		state.Unlocked = []string{}
	}
	prefs := model.DefaultPreferences()
	if t.load(ctx, store.SlotPreferences, &prefs) {
		state.Preferences = prefs
	} else if state.Preferences.Theme == "" {
		state.Preferences = model.DefaultPreferences()
	}
	t.state = state

	t.recompute()
	t.save(ctx, store.SlotHabits, store.SlotGameState)
	t.logger.Info("state loaded",
		"habits", t.registry.Len(),
		"entries", t.entries.Len(),
		"plans", t.plans.Len(),
		"points", t.state.TotalPoints,
	)
}

// load reports whether the slot held a readable document.
func (t *Tracker) load(ctx context.Context, key string, v any) bool {
	ok, err := t.slots.Load(ctx, key, v)
	if err != nil {
		t.logger.Error("load slot", "slot", key, "error", err)
		return false
	}
	return ok
}

// save snapshots the named slots. Failures are logged; in-memory state stays
// authoritative.
func (t *Tracker) save(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var v any
		switch key {
		case store.SlotHabits:
			v = t.registry.List()
		case store.SlotEntries:
			v = t.entries.Pairs()
		case store.SlotGameState:
			v = t.state
		case store.SlotPreferences:
			v = t.state.Preferences
		case store.SlotPlans:
			v = t.plans.List()
		case store.SlotCategories:
			v = t.registry.Categories()
		default:
			continue
		}
		if err := t.slots.Save(ctx, key, v); err != nil {
			t.logger.Error("save slot", "slot", key, "error", err)
		}
	}
}

func (t *Tracker) notify(entity, action, id string, extra map[string]any) {
	if t.onChange != nil {
		t.onChange(entity, action, id, extra)
	}
}

// recompute refreshes streaks, the daily streak, points, level and
// achievements. Callers hold the lock.
func (t *Tracker) recompute() {
	today := t.now()
	status := t.entries.Lookup()

	for _, h := range t.registry.List() {
		t.registry.SetStreak(h.ID, scoring.Streak(h, status, today, t.cfg.MaxLookback))
	}
	habits := t.registry.List()

	t.state.DailyStreak = scoring.DailyStreak(habits, status, today, t.cfg.MaxLookback)
	t.state.LongestStreak = scoring.BestStreak(t.state.LongestStreak, t.state.DailyStreak)
	if t.cfg.Strategy == scoring.StrategyRecompute {
		t.state.TotalPoints = scoring.RecomputePoints(habits, status, today, t.cfg.MaxLookback)
	}
	if t.state.TotalPoints < 0 {
		t.state.TotalPoints = 0
	}
	t.state.Level = scoring.Level(t.state.TotalPoints, t.cfg.LevelDivisor)

	for _, d := range achievement.Evaluate(&t.state, habits, t.defs) {
		t.logger.Info("achievement unlocked", "id", d.ID)
		t.notify("achievement", "unlocked", d.ID, map[string]any{"name": d.Name, "icon": d.Icon})
	}
}

// Today is the current calendar day.
func (t *Tracker) Today() string {
	return model.DateOf(t.now())
}

// Habits returns every habit in creation order.
func (t *Tracker) Habits() []model.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.List()
}

func (t *Tracker) Habit(id string) (model.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Get(id)
}

// Grouped returns the habits organized by category, subcategory and group.
func (t *Tracker) Grouped() []habit.CategoryNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return habit.Organize(t.registry.List())
}

func (t *Tracker) Categories() []model.Category {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Categories()
}

// AddHabit creates a habit. Callers validate in first.
func (t *Tracker) AddHabit(ctx context.Context, in habit.HabitInput) model.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.registry.Add(in)
	t.recompute()
	t.save(ctx, store.SlotHabits, store.SlotGameState)
	t.logger.Info("habit created", "id", h.ID, "name", h.Name)
	t.notify("habit", "created", h.ID, nil)

	h, _ = t.registry.Get(h.ID)
	return h
}

// UpdateHabit merges u into the habit. It reports false when id is unknown.
func (t *Tracker) UpdateHabit(ctx context.Context, id string, u habit.HabitUpdate) (model.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registry.Update(id, u) {
		return model.Habit{}, false
	}
	t.recompute()
	t.save(ctx, store.SlotHabits, store.SlotGameState)
	t.notify("habit", "updated", id, nil)

	h, _ := t.registry.Get(id)
	return h, true
}

// RemoveHabit deletes the habit and its entries.
func (t *Tracker) RemoveHabit(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registry.Remove(id) {
		return false
	}
	n := t.entries.RemoveHabit(id)
	t.recompute()
	t.save(ctx, store.SlotHabits, store.SlotEntries, store.SlotGameState)
	t.logger.Info("habit deleted", "id", id, "entries", n)
	t.notify("habit", "deleted", id, nil)
	return true
}

// Entry returns the day's entry, a not-started placeholder when none exists.
func (t *Tracker) Entry(habitID, date string) model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries.Get(habitID, date); ok {
		return e
	}
	return model.Entry{HabitID: habitID, Date: date, Status: model.StatusNotStarted}
}

// Entries returns the habit's entries sorted by date.
func (t *Tracker) Entries(habitID string) []model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.ForHabit(habitID)
}

// SetStatus records status for the habit's day. Unknown habits are ignored
// and reported with false.
func (t *Tracker) SetStatus(ctx context.Context, habitID, date string, status model.Status) (model.Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.registry.Get(habitID)
	if !ok {
		return model.Entry{}, false
	}
	prev := t.entries.SetStatus(habitID, date, status)
	return t.afterStatusChange(ctx, h, date, prev, status), true
}

// Toggle flips the habit's day between completed and not-started.
func (t *Tracker) Toggle(ctx context.Context, habitID, date string) (model.Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.registry.Get(habitID)
	if !ok {
		return model.Entry{}, false
	}
	prev := t.entries.Status(habitID, date)
	next := t.entries.Toggle(habitID, date)
	return t.afterStatusChange(ctx, h, date, prev, next), true
}

func (t *Tracker) afterStatusChange(ctx context.Context, h model.Habit, date string, from, to model.Status) model.Entry {
	if t.cfg.Strategy == scoring.StrategyInstant {
		t.state.TotalPoints += scoring.ToggleDelta(h.Kind, h.Points, from, to)
	}
	t.recompute()
	t.save(ctx, store.SlotEntries, store.SlotHabits, store.SlotGameState)

	e, _ := t.entries.Get(h.ID, date)
	t.notify("entry", "updated", model.EntryKey(h.ID, date), map[string]any{"status": e.Status})
	if t.onStatus != nil && from != to {
		t.onStatus(ctx, h, to)
	}
	return e
}

// SetDetails merges mood, time spent, quantity and proof into the day's
// entry without touching its status.
func (t *Tracker) SetDetails(ctx context.Context, habitID, date string, d habit.EntryDetails) (model.Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registry.Has(habitID) {
		return model.Entry{}, false
	}
	e := t.entries.SetDetails(habitID, date, d)
	t.save(ctx, store.SlotEntries)
	t.notify("entry", "updated", model.EntryKey(habitID, date), nil)
	return e, true
}

// GameState returns a copy of the game state.
func (t *Tracker) GameState() model.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Unlocked = append([]string(nil), t.state.Unlocked...)
	return s
}

// Stats is the dashboard payload.
type Stats struct {
	Today  string                 `json:"today"`
	Game   model.GameState        `json:"game"`
	Habits []scoring.HabitSummary `json:"habits"`
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	s := t.state
	s.Unlocked = append([]string(nil), t.state.Unlocked...)
	return Stats{
		Today:  model.DateOf(now),
		Game:   s,
		Habits: scoring.Summarize(t.registry.List(), t.entries.Lookup(), now, t.cfg.MaxLookback),
	}
}

// Calendar returns per-day counts for the month containing month.
func (t *Tracker) Calendar(month time.Time) []scoring.CalendarDay {
	t.mu.Lock()
	defer t.mu.Unlock()
	return scoring.Calendar(t.registry.List(), t.entries.Lookup(), month)
}

// Achievements lists the catalogue with unlocked flags.
func (t *Tracker) Achievements() []achievement.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return achievement.Catalogue(t.state, t.defs)
}

func (t *Tracker) Preferences() model.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Preferences
}

func (t *Tracker) SetPreferences(ctx context.Context, p model.Preferences) model.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Preferences = p
	t.save(ctx, store.SlotPreferences, store.SlotGameState)
	t.notify("preferences", "updated", "", nil)
	return p
}

func (t *Tracker) Plans() []model.NightlyPlan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plans.List()
}

func (t *Tracker) Plan(date string) (model.NightlyPlan, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plans.Get(date)
}

// SavePlan validates and upserts p.
func (t *Tracker) SavePlan(ctx context.Context, p model.NightlyPlan) (model.NightlyPlan, error) {
	if err := plan.Validate(p); err != nil {
		return model.NightlyPlan{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p = t.plans.Upsert(p)
	t.save(ctx, store.SlotPlans)
	t.notify("plan", "updated", p.Date, nil)
	return p, nil
}

func (t *Tracker) DeletePlan(ctx context.Context, date string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.plans.Delete(date) {
		return false
	}
	t.save(ctx, store.SlotPlans)
	t.notify("plan", "deleted", date, nil)
	return true
}

// Export snapshots the full state as an export document.
func (t *Tracker) Export() backup.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Unlocked = append([]string(nil), t.state.Unlocked...)
	return backup.Document{
		Version:    backup.FormatVersion,
		ExportedAt: t.now(),
		Habits:     t.registry.List(),
		Entries:    t.entries.Pairs(),
		GameState:  s,
		Categories: t.registry.Categories(),
		Plans:      t.plans.List(),
	}
}

// ImportSummary reports what an import replaced.
type ImportSummary struct {
	Habits   int `json:"habits"`
	Entries  int `json:"entries"`
	Plans    int `json:"plans"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

// Import replaces all state with doc. Habits written before the game fields
// existed get defaults; derived fields are recomputed. Unlocked achievements
// from the document are kept.
func (t *Tracker) Import(ctx context.Context, doc backup.Decoded) ImportSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, err := range doc.Skipped {
		t.logger.Warn("skipping import record", "error", err)
	}
	sum := ImportSummary{Skipped: len(doc.Skipped)}
	sum.Migrated = t.registry.Replace(doc.Habits)
	sum.Skipped += t.entries.Replace(doc.Entries)
	sum.Skipped += t.plans.Replace(doc.Plans)
	t.registry.ReplaceCategories(doc.Categories)

	state := doc.GameState
	if state.Unlocked == nil {
		state.Unlocked = []string{}
	}
	if state.Preferences.Theme == "" {
		state.Preferences = model.DefaultPreferences()
	}
	t.state = state

	t.recompute()
	t.save(ctx,
		store.SlotHabits, store.SlotEntries, store.SlotGameState,
		store.SlotPreferences, store.SlotPlans, store.SlotCategories,
	)

	sum.Habits = t.registry.Len()
	sum.Entries = t.entries.Len()
	sum.Plans = t.plans.Len()
	t.logger.Info("import complete",
		"habits", sum.Habits, "entries", sum.Entries, "plans", sum.Plans,
		"migrated", sum.Migrated, "skipped", sum.Skipped,
	)
	t.notify("state", "imported", "", nil)
	return sum
}

// ImportCSV adds one habit per usable spreadsheet row.
func (t *Tracker) ImportCSV(ctx context.Context, r io.Reader) csvimport.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := csvimport.Import(r, t.registry, t.logger)
	if res.Imported > 0 {
		t.recompute()
		t.save(ctx, store.SlotHabits, store.SlotCategories, store.SlotGameState)
		t.notify("habit", "imported", "", map[string]any{"count": res.Imported})
	}
	t.logger.Info("csv import complete", "imported", res.Imported, "errors", len(res.Errors))
	return res
}
