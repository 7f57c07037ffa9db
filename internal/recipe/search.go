package recipe

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dukerupert/plateful/internal/model"
)

type SortKey string

const (
	SortName      SortKey = "name"
	SortPrepTime  SortKey = "prepTime"
	SortCookTime  SortKey = "cookTime"
	SortCreatedAt SortKey = "createdAt"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortName, SortPrepTime, SortCookTime, SortCreatedAt:
		return true
	}
	return false
}

// Query filters and orders a recipe list.
type Query struct {
	Text string
	Tags []string
	Sort SortKey
}

// Search returns the recipes matching q in the requested order. Text matches
// name, description or any ingredient name case-insensitively; every tag
// must be present. The input slice is not modified.
func Search(recipes []model.Recipe, q Query) []model.Recipe {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := []model.Recipe{}
	for _, r := range recipes {
		if text != "" && !matchesText(r, text) {
			continue
		}
		if !hasAllTags(r, q.Tags) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.Sort {
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortPrepTime:
			return a.PrepTime < b.PrepTime
		case SortCookTime:
			return a.CookTime < b.CookTime
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return out
}

func matchesText(r model.Recipe, text string) bool {
	if strings.Contains(strings.ToLower(r.Name), text) ||
		strings.Contains(strings.ToLower(r.Description), text) {
		return true
	}
	for _, ing := range r.Ingredients {
		name := ing.Name
		if name == "" {
			name = ing.Raw
		}
		if strings.Contains(strings.ToLower(name), text) {
			return true
		}
	}
	return false
}

func hasAllTags(r model.Recipe, tags []string) bool {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if !slices.ContainsFunc(r.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			return false
		}
	}
	return true
}

// FormatTime renders minutes as "45m", "1h" or "1h 5m".
func FormatTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Tags returns every distinct tag in the catalog, sorted.
func Tags(recipes []model.Recipe) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recipes {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}
