package grocery

import "strings"

// Category is one of the fixed grocery aisles.
type Category string

const (
	Produce    Category = "produce"
	Meat       Category = "meat"
	Dairy      Category = "dairy"
	Pantry     Category = "pantry"
	Frozen     Category = "frozen"
	Bakery     Category = "bakery"
	Beverages  Category = "beverages"
	Snacks     Category = "snacks"
	Condiments Category = "condiments"
	Other      Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	Produce, Meat, Dairy, Pantry, Frozen, Bakery, Beverages, Snacks, Condiments, Other,
}

// Units are the quantity units offered when adding items by hand.
var Units = []string{
	"pieces", "lbs", "kg", "oz", "g", "cups", "tbsp", "tsp", "ml", "l", "cans", "boxes", "bags",
}

// CategoryInfo is the presentation metadata for a category.
type CategoryInfo struct {
	ID          Category `json:"id"`
	DisplayName string   `json:"displayName"`
	Color       string   `json:"color"`
}

var categoryInfo = map[Category]CategoryInfo{
	Produce:    {Produce, "🥬 Produce", "#4caf50"},
	Meat:       {Meat, "🥩 Meat & Seafood", "#f44336"},
	Dairy:      {Dairy, "🥛 Dairy & Eggs", "#ffeb3b"},
	Pantry:     {Pantry, "🥫 Pantry", "#ff9800"},
	Frozen:     {Frozen, "❄️ Frozen", "#2196f3"},
	Bakery:     {Bakery, "🍞 Bakery", "#8d6e63"},
	Beverages:  {Beverages, "🥤 Beverages", "#9c27b0"},
	Snacks:     {Snacks, "🍿 Snacks", "#ff5722"},
	Condiments: {Condiments, "🧂 Condiments", "#795548"},
	Other:      {Other, "📦 Other", "#607d8b"},
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// Info returns the display metadata for c. Unknown categories fall back to
// their raw id with the "other" colour.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	return CategoryInfo{ID: c, DisplayName: string(c), Color: categoryInfo[Other].Color}
}

// AllCategoryInfo returns the metadata of every category in display order.
func AllCategoryInfo() []CategoryInfo {
	out := make([]CategoryInfo, len(Categories))
	for i, c := range Categories {
		out[i] = categoryInfo[c]
	}
	return out
}

// Categorize returns the grocery category for the given ingredient name.
// It performs case-insensitive matching: exact match first, then keyword match.
// Falls back to Other if no match is found.
func Categorize(itemName string) Category {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range keywordMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return Other
}

var exactMatch = map[string]Category{
	// Produce
	"garlic":      Produce,
	"onion":       Produce,
	"onions":      Produce,
	"tomato":      Produce,
	"tomatoes":    Produce,
	"lettuce":     Produce,
	"spinach":     Produce,
	"carrot":      Produce,
	"carrots":     Produce,
	"cucumber":    Produce,
	"avocado":     Produce,
	"avocados":    Produce,
	"lemon":       Produce,
	"lime":        Produce,
	"basil":       Produce,
	"parsley":     Produce,
	"cilantro":    Produce,
	"ginger":      Produce,
	"broccoli":    Produce,
	"zucchini":    Produce,
	"mushrooms":   Produce,
	"bell pepper": Produce,

	// Meat
	"chicken": Meat,
	"beef":    Meat,
	"pork":    Meat,
	"salmon":  Meat,
	"shrimp":  Meat,
	"turkey":  Meat,
	"lamb":    Meat,
	"bacon":   Meat,

	// Dairy
	"milk":     Dairy,
	"eggs":     Dairy,
	"egg":      Dairy,
	"butter":   Dairy,
	"cheese":   Dairy,
	"yogurt":   Dairy,
	"parmesan": Dairy,

	// Pantry
	"rice":      Pantry,
	"pasta":     Pantry,
	"spaghetti": Pantry,
	"flour":     Pantry,
	"sugar":     Pantry,
	"salt":      Pantry,
	"pepper":    Pantry,
	"oil":       Pantry,
	"vinegar":   Pantry,
	"quinoa":    Pantry,

	// Bakery
	"bread":   Bakery,
	"bagels":  Bakery,
	"rolls":   Bakery,
	"muffins": Bakery,

	// Beverages
	"water":  Beverages,
	"coffee": Beverages,
	"tea":    Beverages,
	"juice":  Beverages,

	// Condiments
	"ketchup":    Condiments,
	"mustard":    Condiments,
	"mayo":       Condiments,
	"mayonnaise": Condiments,
	"soy sauce":  Condiments,
	"honey":      Condiments,
}

type keywordEntry struct {
	keyword  string
	category Category
}

// Ordered so multi-word and overriding phrases win over the single words
// they contain ("black pepper" before "pepper", "ice cream" before "cream").
var keywordMatches = []keywordEntry{
	// Overrides
	{"black pepper", Pantry},
	{"white pepper", Pantry},
	{"pepper flakes", Pantry},
	{"peppercorn", Pantry},
	{"ice cream", Frozen},
	{"frozen", Frozen},
	{"baking soda", Pantry},
	{"baking powder", Pantry},
	{"coconut milk", Pantry},
	{"peanut butter", Condiments},
	{"maple syrup", Condiments},
	{"soy sauce", Condiments},
	{"fish sauce", Condiments},
	{"hot sauce", Condiments},
	{"olive oil", Pantry},
	{"tomato paste", Pantry},
	{"tomato sauce", Condiments},
	{"canned", Pantry},
	{"coconut water", Beverages},
	{"green tea", Beverages},
	{"egg noodle", Pantry},
	{"breadcrumb", Pantry},
	{"bread crumb", Pantry},
	{"pepperoni", Meat},
	{"steak", Meat},
	{"butternut", Produce},

	// Produce
	{"onion", Produce},
	{"garlic", Produce},
	{"tomato", Produce},
	{"lettuce", Produce},
	{"spinach", Produce},
	{"carrot", Produce},
	{"pepper", Produce},
	{"cucumber", Produce},
	{"avocado", Produce},
	{"lemon", Produce},
	{"lime", Produce},
	{"herb", Produce},
	{"basil", Produce},
	{"parsley", Produce},
	{"cilantro", Produce},
	{"mushroom", Produce},
	{"broccoli", Produce},
	{"zucchini", Produce},
	{"ginger", Produce},
	{"berries", Produce},
	{"berry", Produce},
	{"apple", Produce},
	{"banana", Produce},
	{"potato", Produce},

	// Meat
	{"chicken", Meat},
	{"beef", Meat},
	{"pork", Meat},
	{"fish", Meat},
	{"salmon", Meat},
	{"shrimp", Meat},
	{"turkey", Meat},
	{"lamb", Meat},
	{"bacon", Meat},
	{"pancetta", Meat},
	{"sausage", Meat},

	// Dairy
	{"milk", Dairy},
	{"cheese", Dairy},
	{"parmesan", Dairy},
	{"butter", Dairy},
	{"yogurt", Dairy},
	{"cream", Dairy},
	{"egg", Dairy},

	// Pantry
	{"rice", Pantry},
	{"pasta", Pantry},
	{"spaghetti", Pantry},
	{"noodle", Pantry},
	{"flour", Pantry},
	{"sugar", Pantry},
	{"oil", Pantry},
	{"vinegar", Pantry},
	{"salt", Pantry},
	{"spice", Pantry},
	{"grain", Pantry},
	{"quinoa", Pantry},
	{"oats", Pantry},
	{"bean", Pantry},
	{"lentil", Pantry},
	{"broth", Pantry},
	{"stock", Pantry},

	// Bakery
	{"bread", Bakery},
	{"roll", Bakery},
	{"bagel", Bakery},
	{"croissant", Bakery},
	{"muffin", Bakery},
	{"tortilla", Bakery},

	// Beverages
	{"juice", Beverages},
	{"soda", Beverages},
	{"water", Beverages},
	{"coffee", Beverages},
	{"tea", Beverages},
	{"wine", Beverages},
	{"beer", Beverages},

	// Snacks
	{"chip", Snacks},
	{"cracker", Snacks},
	{"nut", Snacks},
	{"popcorn", Snacks},
	{"cookie", Snacks},
	{"candy", Snacks},
	{"chocolate", Snacks},

	// Condiments
	{"sauce", Condiments},
	{"ketchup", Condiments},
	{"mustard", Condiments},
	{"mayo", Condiments},
	{"dressing", Condiments},
	{"syrup", Condiments},
	{"honey", Condiments},
	{"salsa", Condiments},
}
