package grocery

import (
	"math"

	"github.com/dukerupert/plateful/internal/model"
)

type Stats struct {
	Total     int `json:"total"`
	Purchased int `json:"purchased"`
	Remaining int `json:"remaining"`
	Progress  int `json:"progress"`
}

// ComputeStats summarizes shopping progress. Progress is a whole percentage
// rounded half up, and 0 for an empty list.
func ComputeStats(items []model.GroceryItem) Stats {
	s := Stats{Total: len(items)}
	for _, item := range items {
		if item.Purchased {
			s.Purchased++
		}
	}
	s.Remaining = s.Total - s.Purchased
	if s.Total > 0 {
		s.Progress = int(math.Floor(100*float64(s.Purchased)/float64(s.Total) + 0.5))
	}
	return s
}

// CategoryGroup is one aisle of a grouped list.
type CategoryGroup struct {
	Category CategoryInfo        `json:"category"`
	Items    []model.GroceryItem `json:"items"`
}

// GroupByCategory buckets items by category in display order, omitting empty
// categories. Items with an unknown category land in Other.
func GroupByCategory(items []model.GroceryItem) []CategoryGroup {
	buckets := make(map[Category][]model.GroceryItem)
	for _, item := range items {
		c := bucketOf(item)
		buckets[c] = append(buckets[c], item)
	}

	groups := []CategoryGroup{}
	for _, c := range Categories {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, CategoryGroup{Category: c.Info(), Items: buckets[c]})
	}
	return groups
}

type CategoryCount struct {
	Category  Category `json:"category"`
	Purchased int      `json:"purchased"`
	Total     int      `json:"total"`
}

// CategoryProgress counts purchased and total items per non-empty category.
func CategoryProgress(items []model.GroceryItem) []CategoryCount {
	counts := make(map[Category]*CategoryCount)
	for _, item := range items {
		c := bucketOf(item)
		cc, ok := counts[c]
		if !ok {
			cc = &CategoryCount{Category: c}
			counts[c] = cc
		}
		cc.Total++
		if item.Purchased {
			cc.Purchased++
		}
	}

	out := []CategoryCount{}
	for _, c := range Categories {
		if cc, ok := counts[c]; ok {
			out = append(out, *cc)
		}
	}
	return out
}

func bucketOf(item model.GroceryItem) Category {
	c := Category(item.Category)
	if !c.Valid() {
		return Other
	}
	return c
}
