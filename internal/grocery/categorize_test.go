package grocery

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"milk", Dairy},
		{"chicken", Meat},
		{"bread", Bakery},
		{"rice", Pantry},
		{"pepper", Pantry},
		{"coffee", Beverages},
		{"ketchup", Condiments},
		{"garlic", Produce},
		{"quinoa", Pantry},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeKeywordMatch(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"chicken breast", Meat},
		{"red bell pepper", Produce},
		{"black pepper", Pantry},
		{"freshly ground black pepper", Pantry},
		{"vanilla ice cream", Frozen},
		{"heavy cream", Dairy},
		{"baking soda", Pantry},
		{"whole wheat bread", Bakery},
		{"frozen peas", Frozen},
		{"cherry tomatoes", Produce},
		{"low sodium soy sauce", Condiments},
		{"extra virgin olive oil", Pantry},
		{"greek yogurt", Dairy},
		{"corn tortillas", Bakery},
		{"sparkling water", Beverages},
		{"mixed nuts", Snacks},
		{"ranch dressing", Condiments},
		{"pepperoni slices", Meat},
		{"sweet potato", Produce},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"MILK", Dairy},
		{"Chicken", Meat},
		{"Ice Cream", Frozen},
		{"  Flour  ", Pantry},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "xyzzy", "paper towels", "tofu"} {
		if got := Categorize(input); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Other)
		}
	}
}

func TestCategorizeAlwaysKnown(t *testing.T) {
	for _, entry := range keywordMatches {
		if !entry.category.Valid() {
			t.Errorf("keyword %q maps to unknown category %q", entry.keyword, entry.category)
		}
	}
	for name, c := range exactMatch {
		if !c.Valid() {
			t.Errorf("exact %q maps to unknown category %q", name, c)
		}
	}
}

func TestCategoryInfo(t *testing.T) {
	if len(Categories) != 10 {
		t.Fatalf("categories = %d, want 10", len(Categories))
	}
	infos := AllCategoryInfo()
	for i, info := range infos {
		if info.ID != Categories[i] {
			t.Errorf("info[%d] = %q, want %q", i, info.ID, Categories[i])
		}
		if info.DisplayName == "" || info.Color == "" {
			t.Errorf("info for %q incomplete: %+v", info.ID, info)
		}
	}
	if got := Meat.Info().DisplayName; got != "🥩 Meat & Seafood" {
		t.Errorf("meat display = %q", got)
	}
	if got := Category("spices").Info(); got.DisplayName != "spices" || got.Color != "#607d8b" {
		t.Errorf("unknown category info = %+v", got)
	}
}
