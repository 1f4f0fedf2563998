package habit

import (
	"strings"
	"unicode"

	"github.com/dukerupert/habiti/internal/model"
)

// DefaultTaxonomy is the category tree of a fresh install.
func DefaultTaxonomy() []model.Category {
	return []model.Category{
		{ID: "health", Name: "Health", Icon: "❤️", Subcategories: []model.Subcategory{
			{ID: "nutrition", Name: "Nutrition", Icon: "🥗"},
			{ID: "sleep", Name: "Sleep", Icon: "😴"},
		}},
		{ID: "fitness", Name: "Fitness", Icon: "💪", Subcategories: []model.Subcategory{
			{ID: "cardio", Name: "Cardio", Icon: "🏃"},
			{ID: "strength", Name: "Strength", Icon: "🏋️"},
		}},
		{ID: "mind", Name: "Mind", Icon: "🧠", Subcategories: []model.Subcategory{
			{ID: "learning", Name: "Learning", Icon: "📚"},
			{ID: "mindfulness", Name: "Mindfulness", Icon: "🧘"},
		}},
		{ID: "productivity", Name: "Productivity", Icon: "⚡"},
		{ID: "social", Name: "Social", Icon: "👥"},
		{ID: "finance", Name: "Finance", Icon: "💰"},
		{ID: "spiritual", Name: "Spiritual", Icon: "🙏"},
	}
}

// Slug lower-cases s and joins its words with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// Categories returns a deep copy of the taxonomy.
func (r *Registry) Categories() []model.Category {
	out := make([]model.Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = c
		out[i].Subcategories = make([]model.Subcategory, len(c.Subcategories))
		for j, sc := range c.Subcategories {
			out[i].Subcategories[j] = sc
			out[i].Subcategories[j].Groups = append([]model.Group(nil), sc.Groups...)
		}
	}
	return out
}

// ReplaceCategories swaps in a loaded taxonomy. An empty list restores the
// defaults.
func (r *Registry) ReplaceCategories(cats []model.Category) {
	if len(cats) == 0 {
		r.categories = DefaultTaxonomy()
		return
	}
	r.categories = cats
}

// EnsurePath makes sure the category, subcategory and group named exist,
// creating missing nodes. Names are matched by slug; empty levels stop the
// walk. It returns the ids of the nodes on the path and whether anything was
// created.
func (r *Registry) EnsurePath(category, subcategory, group string) (catID, subID, groupID string, created bool) {
	catID = Slug(category)
	if catID == "" {
		return "", "", "", false
	}
	ci := -1
	for i := range r.categories {
		if r.categories[i].ID == catID {
			ci = i
			break
		}
	}
	if ci < 0 {
		r.categories = append(r.categories, model.Category{ID: catID, Name: strings.TrimSpace(category)})
		ci = len(r.categories) - 1
		created = true
	}

	subID = Slug(subcategory)
	if subID == "" {
		return catID, "", "", created
	}
	cat := &r.categories[ci]
	si := -1
	for i := range cat.Subcategories {
		if cat.Subcategories[i].ID == subID {
			si = i
			break
		}
	}
	if si < 0 {
		cat.Subcategories = append(cat.Subcategories, model.Subcategory{ID: subID, Name: strings.TrimSpace(subcategory)})
		si = len(cat.Subcategories) - 1
		created = true
	}

	groupID = Slug(group)
	if groupID == "" {
		return catID, subID, "", created
	}
	sub := &cat.Subcategories[si]
	for _, g := range sub.Groups {
		if g.ID == groupID {
			return catID, subID, groupID, created
		}
	}
	sub.Groups = append(sub.Groups, model.Group{ID: groupID, Name: strings.TrimSpace(group)})
	return catID, subID, groupID, true
}
