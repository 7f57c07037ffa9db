package recipe

import (
	"testing"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

func searchFixture() []model.Recipe {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Recipe{
		{ID: "a", Name: "Tacos", Description: "Street style", PrepTime: 15, CookTime: 20, Tags: []string{"mexican", "quick-meal"}, CreatedAt: base,
			Ingredients: []model.Ingredient{{Name: "Ground Beef"}, {Name: "Tortillas"}}},
		{ID: "b", Name: "avocado toast", Description: "Breakfast classic", PrepTime: 5, CookTime: 5, Tags: []string{"vegetarian", "quick-meal"}, CreatedAt: base.Add(time.Hour),
			Ingredients: []model.Ingredient{{Raw: "1 ripe avocado"}}},
		{ID: "c", Name: "Risotto", Description: "Creamy mushroom rice", PrepTime: 10, CookTime: 30, Tags: []string{"italian", "vegetarian"}, CreatedAt: base.Add(2 * time.Hour),
			Ingredients: []model.Ingredient{{Name: "Arborio Rice"}}},
	}
}

func ids(recipes []model.Recipe) string {
	s := ""
	for _, r := range recipes {
		s += r.ID
	}
	return s
}

func TestSearch(t *testing.T) {
	recipes := searchFixture()

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"default newest first", Query{}, "cba"},
		{"name match", Query{Text: "TACO"}, "a"},
		{"description match", Query{Text: "breakfast"}, "b"},
		{"structured ingredient", Query{Text: "beef"}, "a"},
		{"freeform ingredient", Query{Text: "avocado"}, "b"},
		{"one tag", Query{Tags: []string{"vegetarian"}}, "cb"},
		{"all tags required", Query{Tags: []string{"vegetarian", "quick-meal"}}, "b"},
		{"tag and text", Query{Text: "rice", Tags: []string{"italian"}}, "c"},
		{"no match", Query{Text: "sushi"}, ""},
		{"sort name case-insensitive", Query{Sort: SortName}, "bca"},
		{"sort prep", Query{Sort: SortPrepTime}, "bca"},
		{"sort cook", Query{Sort: SortCookTime}, "bac"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Search(recipes, tt.q)); got != tt.want {
				t.Errorf("Search = %q, want %q", got, tt.want)
			}
		})
	}

	if ids(recipes) != "abc" {
		t.Error("Search must not reorder its input")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{65, "1h 5m"},
		{150, "2h 30m"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.minutes); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestTags(t *testing.T) {
	got := Tags(searchFixture())
	want := []string{"italian", "mexican", "quick-meal", "vegetarian"}
	if len(got) != len(want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
