// Package plan keeps the nightly plans, one per calendar day.
package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/habiti/internal/model"
)

// Book holds nightly plans keyed by date. It is not safe for concurrent use.
type Book struct {
	plans map[string]model.NightlyPlan
	now   func() time.Time
}

func NewBook(now func() time.Time) *Book {
	if now == nil {
		now = time.Now
	}
	return &Book{plans: map[string]model.NightlyPlan{}, now: now}
}

// Validate checks that p names a real calendar day and that its priorities
// have titles.
func Validate(p model.NightlyPlan) error {
	if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
		return fmt.Errorf("invalid plan date %q", p.Date)
	}
	for i, pr := range p.Priorities {
		if strings.TrimSpace(pr.Title) == "" {
			return fmt.Errorf("priority %d has no title", i+1)
		}
	}
	if p.SleepPlan.TargetHours < 0 || p.SleepPlan.TargetHours > 24 {
		return fmt.Errorf("target sleep hours %v out of range", p.SleepPlan.TargetHours)
	}
	return nil
}

// Upsert stores p, replacing any plan for the same date.
func (b *Book) Upsert(p model.NightlyPlan) model.NightlyPlan {
	p.UpdatedAt = b.now()
	if p.Priorities == nil {
		p.Priorities = []model.Priority{}
	}
	b.plans[p.Date] = p
	return p
}

func (b *Book) Get(date string) (model.NightlyPlan, bool) {
	p, ok := b.plans[date]
	return p, ok
}

// List returns all plans, oldest first.
func (b *Book) List() []model.NightlyPlan {
	out := make([]model.NightlyPlan, 0, len(b.plans))
	for _, p := range b.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Delete removes the plan for date and reports whether one existed.
func (b *Book) Delete(date string) bool {
	if _, ok := b.plans[date]; !ok {
		return false
	}
	delete(b.plans, date)
	return true
}

// Replace swaps in a loaded plan list. Plans with unparseable dates are
// dropped; it returns how many.
func (b *Book) Replace(plans []model.NightlyPlan) int {
	b.plans = make(map[string]model.NightlyPlan, len(plans))
	dropped := 0
	for _, p := range plans {
		if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
			dropped++
			continue
		}
		b.plans[p.Date] = p
	}
	return dropped
}

func (b *Book) Len() int { return len(b.plans) }
