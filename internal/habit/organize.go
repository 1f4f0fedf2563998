package habit

import (
	"sort"
	"strings"

	"github.com/dukerupert/habiti/internal/model"
)

// Uncategorized is the bucket for habits without a category.
const Uncategorized = "Uncategorized"

type GroupNode struct {
	Name   string        `json:"name"`
	Habits []model.Habit `json:"habits"`
}

type SubcategoryNode struct {
	Name   string        `json:"name"`
	Habits []model.Habit `json:"habits"`
	Groups []GroupNode   `json:"groups"`
}

type CategoryNode struct {
	Name          string            `json:"name"`
	Habits        []model.Habit     `json:"habits"`
	Subcategories []SubcategoryNode `json:"subcategories"`
}

// Organize groups habits by their own category, subcategory and group values.
// A habit missing a level is kept at the nearest parent. Categories are
// sorted by name with Uncategorized last; habits keep their input order.
func Organize(habits []model.Habit) []CategoryNode {
	var cats []CategoryNode
	catIdx := map[string]int{}

	for _, h := range habits {
		catName := strings.TrimSpace(h.Category)
		if catName == "" {
			catName = Uncategorized
		}
		ci, ok := catIdx[catName]
		if !ok {
			cats = append(cats, CategoryNode{Name: catName})
			ci = len(cats) - 1
			catIdx[catName] = ci
		}
		cat := &cats[ci]

		subName := strings.TrimSpace(h.Subcategory)
		if subName == "" {
			cat.Habits = append(cat.Habits, h)
			continue
		}
		si := -1
		for i := range cat.Subcategories {
			if cat.Subcategories[i].Name == subName {
				si = i
				break
			}
		}
		if si < 0 {
			cat.Subcategories = append(cat.Subcategories, SubcategoryNode{Name: subName})
			si = len(cat.Subcategories) - 1
		}
		sub := &cat.Subcategories[si]

		groupName := strings.TrimSpace(h.Group)
		if groupName == "" {
			sub.Habits = append(sub.Habits, h)
			continue
		}
		gi := -1
		for i := range sub.Groups {
			if sub.Groups[i].Name == groupName {
				gi = i
				break
			}
		}
		if gi < 0 {
			sub.Groups = append(sub.Groups, GroupNode{Name: groupName})
			gi = len(sub.Groups) - 1
		}
		sub.Groups[gi].Habits = append(sub.Groups[gi].Habits, h)
	}

	sort.SliceStable(cats, func(i, j int) bool {
		a, b := cats[i].Name, cats[j].Name
		if a == Uncategorized || b == Uncategorized {
			return b == Uncategorized && a != Uncategorized
		}
		return a < b
	})
	for i := range cats {
		subs := cats[i].Subcategories
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].Name < subs[b].Name })
		for j := range subs {
			groups := subs[j].Groups
			sort.SliceStable(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
		}
	}
	return cats
}
