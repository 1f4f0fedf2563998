// Package habit owns the habit definitions, the category taxonomy and the
// per-day entry log.
package habit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/habiti/internal/model"
)

// maxIDAttempts bounds regeneration when a generated id collides.
const maxIDAttempts = 16

// HabitInput is the partial habit accepted by Add. Zero values are replaced
// by defaults.
type HabitInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Kind        model.Kind       `json:"kind"`
	Difficulty  model.Difficulty `json:"difficulty"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	Group       string           `json:"group"`
	Icon        string           `json:"icon"`
	Points      int              `json:"points"`
	Goal        int              `json:"goal"`
	Reward      string           `json:"reward"`
	Frequency   model.Frequency  `json:"frequency"`
	TargetDays  []time.Weekday   `json:"target_days"`
	TimeFrame   string           `json:"time_frame"`
	Tracking    model.Tracking   `json:"tracking"`
	Unit        string           `json:"unit"`
	Inactive    bool             `json:"inactive"`
}

func (in HabitInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if in.Kind != "" && !in.Kind.Valid() {
		errs = append(errs, fmt.Errorf("invalid kind %q", in.Kind))
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		errs = append(errs, fmt.Errorf("invalid difficulty %q", in.Difficulty))
	}
	if in.Frequency != "" && !in.Frequency.Valid() {
		errs = append(errs, fmt.Errorf("invalid frequency %q", in.Frequency))
	}
	if in.Tracking != "" && !in.Tracking.Valid() {
		errs = append(errs, fmt.Errorf("invalid tracking %q", in.Tracking))
	}
	if in.Points < 0 {
		errs = append(errs, errors.New("points must not be negative"))
	}
	if in.Goal < 0 {
		errs = append(errs, errors.New("goal must not be negative"))
	}
	errs = append(errs, validateDays(in.TargetDays))
	return errors.Join(errs...)
}

// HabitUpdate carries the fields to change; nil fields are left alone.
type HabitUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Kind        *model.Kind       `json:"kind,omitempty"`
	Difficulty  *model.Difficulty `json:"difficulty,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Subcategory *string           `json:"subcategory,omitempty"`
	Group       *string           `json:"group,omitempty"`
	Icon        *string           `json:"icon,omitempty"`
	Points      *int              `json:"points,omitempty"`
	Goal        *int              `json:"goal,omitempty"`
	Reward      *string           `json:"reward,omitempty"`
	Frequency   *model.Frequency  `json:"frequency,omitempty"`
	TargetDays  *[]time.Weekday   `json:"target_days,omitempty"`
	TimeFrame   *string           `json:"time_frame,omitempty"`
	Active      *bool             `json:"active,omitempty"`
	Tracking    *model.Tracking   `json:"tracking,omitempty"`
	Unit        *string           `json:"unit,omitempty"`
}

func (u HabitUpdate) Validate() error {
	var errs []error
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, errors.New("name must not be blank"))
	}
	if u.Kind != nil && !u.Kind.Valid() {
		errs = append(errs, fmt.Errorf("invalid kind %q", *u.Kind))
	}
	if u.Difficulty != nil && !u.Difficulty.Valid() {
		errs = append(errs, fmt.Errorf("invalid difficulty %q", *u.Difficulty))
	}
	if u.Frequency != nil && !u.Frequency.Valid() {
		errs = append(errs, fmt.Errorf("invalid frequency %q", *u.Frequency))
	}
	if u.Tracking != nil && !u.Tracking.Valid() {
		errs = append(errs, fmt.Errorf("invalid tracking %q", *u.Tracking))
	}
	if u.Points != nil && *u.Points < 0 {
		errs = append(errs, errors.New("points must not be negative"))
	}
	if u.Goal != nil && *u.Goal < 0 {
		errs = append(errs, errors.New("goal must not be negative"))
	}
	if u.TargetDays != nil {
		errs = append(errs, validateDays(*u.TargetDays))
	}
	return errors.Join(errs...)
}

func validateDays(days []time.Weekday) error {
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid target day %d", d)
		}
	}
	return nil
}

// Registry is the ordered collection of habit definitions plus the category
// taxonomy. It is not safe for concurrent use.
type Registry struct {
	habits     []model.Habit
	categories []model.Category
	newID      func() string
	now        func() time.Time
}

type Option func(*Registry)

// WithIDFunc replaces the id generator.
func WithIDFunc(f func() string) Option {
	return func(r *Registry) { r.newID = f }
}

// WithClock replaces the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		newID:      uuid.NewString,
		now:        time.Now,
		categories: DefaultTaxonomy(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Replace swaps in a loaded habit list, applying defaults to records written
// before the game fields existed. It reports how many habits were migrated.
func (r *Registry) Replace(habits []model.Habit) int {
	migrated := 0
	r.habits = make([]model.Habit, 0, len(habits))
	seen := make(map[string]bool, len(habits))
	for _, h := range habits {
		if h.ID == "" || seen[h.ID] {
			h.ID = r.freshID(seen)
			migrated++
		}
		seen[h.ID] = true
		if h.ApplyDefaults() {
			migrated++
		}
		r.habits = append(r.habits, h)
	}
	return migrated
}

func (r *Registry) freshID(taken map[string]bool) string {
	id := r.newID()
	for i := 1; taken[id] && i < maxIDAttempts; i++ {
		id = r.newID()
	}
	if taken[id] {
		// The generator keeps colliding; fall back to a random UUID.
		id = uuid.NewString()
	}
	return id
}

func (r *Registry) ids() map[string]bool {
	taken := make(map[string]bool, len(r.habits))
	for _, h := range r.habits {
		taken[h.ID] = true
	}
	return taken
}

// Add creates a habit from in and appends it.
func (r *Registry) Add(in HabitInput) model.Habit {
	h := model.Habit{
		ID:          r.freshID(r.ids()),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Kind:        in.Kind,
		Difficulty:  in.Difficulty,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Group:       strings.TrimSpace(in.Group),
		Icon:        in.Icon,
		Points:      in.Points,
		Goal:        in.Goal,
		Reward:      in.Reward,
		Frequency:   in.Frequency,
		TargetDays:  append([]time.Weekday(nil), in.TargetDays...),
		TimeFrame:   in.TimeFrame,
		Active:      !in.Inactive,
		Tracking:    in.Tracking,
		Unit:        in.Unit,
		CreatedAt:   r.now(),
	}
	h.ApplyDefaults()
	r.habits = append(r.habits, h)
	return h
}

// Get returns a copy of the habit with id.
func (r *Registry) Get(id string) (model.Habit, bool) {
	if i := r.index(id); i >= 0 {
		return r.habits[i], true
	}
	return model.Habit{}, false
}

// Has reports whether id names a registered habit.
func (r *Registry) Has(id string) bool {
	return r.index(id) >= 0
}

// List returns the habits in insertion order.
func (r *Registry) List() []model.Habit {
	return append([]model.Habit(nil), r.habits...)
}

func (r *Registry) Len() int {
	return len(r.habits)
}

// Update merges u into the habit with id. Missing ids are ignored.
func (r *Registry) Update(id string, u HabitUpdate) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	h := &r.habits[i]
	if u.Name != nil {
		h.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		h.Description = strings.TrimSpace(*u.Description)
	}
	if u.Kind != nil {
		h.Kind = *u.Kind
	}
	if u.Difficulty != nil {
		h.Difficulty = *u.Difficulty
	}
	if u.Category != nil {
		h.Category = strings.TrimSpace(*u.Category)
	}
	if u.Subcategory != nil {
		h.Subcategory = strings.TrimSpace(*u.Subcategory)
	}
	if u.Group != nil {
		h.Group = strings.TrimSpace(*u.Group)
	}
	if u.Icon != nil {
		h.Icon = *u.Icon
	}
	if u.Points != nil {
		h.Points = *u.Points
	}
	if u.Goal != nil {
		h.Goal = *u.Goal
	}
	if u.Reward != nil {
		h.Reward = *u.Reward
	}
	if u.Frequency != nil {
		h.Frequency = *u.Frequency
	}
	if u.TargetDays != nil {
		h.TargetDays = append([]time.Weekday(nil), (*u.TargetDays)...)
	}
	if u.TimeFrame != nil {
		h.TimeFrame = *u.TimeFrame
	}
	if u.Active != nil {
		h.Active = *u.Active
	}
	if u.Tracking != nil {
		h.Tracking = *u.Tracking
	}
	if u.Unit != nil {
		h.Unit = *u.Unit
	}
	h.ApplyDefaults()
	return true
}

// SetStreak stores recomputed streak values, keeping BestStreak monotonic.
func (r *Registry) SetStreak(id string, streak int) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	h := &r.habits[i]
	h.Streak = streak
	if streak > h.BestStreak {
		h.BestStreak = streak
	}
	return true
}

// Remove deletes the habit with id. Callers cascade the entry deletion.
func (r *Registry) Remove(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.habits = append(r.habits[:i], r.habits[i+1:]...)
	return true
}

func (r *Registry) index(id string) int {
	for i := range r.habits {
		if r.habits[i].ID == id {
			return i
		}
	}
	return -1
}
