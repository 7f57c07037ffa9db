package grocery

import (
	"bytes"
	"testing"

	"github.com/dukerupert/plateful/internal/model"
)

type row struct {
	category  Category
	purchased bool
}

func items(specs ...row) []model.GroceryItem {
	out := make([]model.GroceryItem, len(specs))
	for i, s := range specs {
		out[i] = model.GroceryItem{Name: "item", Category: string(s.category), Purchased: s.purchased}
	}
	return out
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		items []model.GroceryItem
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{"none purchased", items(row{Produce, false}, row{Dairy, false}), Stats{Total: 2, Remaining: 2}},
		{"one of three", items(row{Produce, true}, row{Dairy, false}, row{Meat, false}), Stats{Total: 3, Purchased: 1, Remaining: 2, Progress: 33}},
		{"two of three", items(row{Produce, true}, row{Dairy, true}, row{Meat, false}), Stats{Total: 3, Purchased: 2, Remaining: 1, Progress: 67}},
		{"half rounds up", items(row{Produce, true}, row{Produce, true}, row{Produce, true}, row{Produce, false}, row{Produce, false}, row{Produce, false}, row{Produce, false}, row{Produce, false}), Stats{Total: 8, Purchased: 3, Remaining: 5, Progress: 38}},
		{"all", items(row{Pantry, true}), Stats{Total: 1, Purchased: 1, Progress: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.items); got != tt.want {
				t.Errorf("ComputeStats = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGroupByCategory(t *testing.T) {
	list := items(
		row{Dairy, false},
		row{Produce, false},
		row{Dairy, true},
		row{"spices", false},
	)

	groups := GroupByCategory(list)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	wantOrder := []Category{Produce, Dairy, Other}
	for i, c := range wantOrder {
		if groups[i].Category.ID != c {
			t.Errorf("group[%d] = %q, want %q", i, groups[i].Category.ID, c)
		}
	}
	if len(groups[1].Items) != 2 {
		t.Errorf("dairy items = %d, want 2", len(groups[1].Items))
	}
	if got := GroupByCategory(nil); got == nil || len(got) != 0 {
		t.Errorf("empty grouping = %v, want empty slice", got)
	}
}

func TestCategoryProgress(t *testing.T) {
	list := items(
		row{Meat, true},
		row{Produce, false},
		row{Meat, false},
		row{Produce, true},
		row{Produce, true},
	)

	got := CategoryProgress(list)
	want := []CategoryCount{
		{Category: Produce, Purchased: 2, Total: 3},
		{Category: Meat, Purchased: 1, Total: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("progress = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestShareQR(t *testing.T) {
	if got := ShareURL("http://localhost:8080/", "abc"); got != "http://localhost:8080/api/grocery-lists/abc" {
		t.Errorf("ShareURL = %q", got)
	}

	png, err := ShareQR("http://localhost:8080", "abc")
	if err != nil {
		t.Fatalf("ShareQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}
