package grocery

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/google/uuid"
)

// Generate builds the shopping items for every recipe meal in plan.
// Ingredients are merged on lower-cased name plus unit, summing quantities
// and recording every contributing recipe. Items keep first-seen order.
// Meals whose recipe is no longer in the catalog are skipped.
func Generate(plan *model.MealPlan, recipes []model.Recipe) []model.GroceryItem {
	items := []model.GroceryItem{}
	if plan == nil {
		return items
	}

	byID := make(map[string]*model.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}
	index := make(map[string]int)

	for _, day := range model.Days {
		for _, mealType := range model.MealTypes {
			meal := plan.Meal(day, mealType)
			if !meal.HasRecipe() {
				continue
			}
			recipe, ok := byID[meal.Recipe.ID]
			if !ok {
				continue
			}

			for _, ing := range recipe.Ingredients {
				qty, unit, name, ok := normalize(ing)
				if !ok {
					continue
				}

				key := strings.ToLower(name) + "_" + unit
				if i, seen := index[key]; seen {
					items[i].Quantity += qty
					if !slices.Contains(items[i].SourceRecipes, recipe.Name) {
						items[i].SourceRecipes = append(items[i].SourceRecipes, recipe.Name)
					}
					continue
				}

				index[key] = len(items)
				items = append(items, model.GroceryItem{
					ID:            uuid.NewString(),
					Name:          capitalize(name),
					Category:      string(Categorize(name)),
					Quantity:      qty,
					Unit:          unit,
					Notes:         "From " + recipe.Name,
					Source:        model.SourceMealPlan,
					SourceID:      plan.ID,
					SourceRecipes: []string{recipe.Name},
				})
			}
		}
	}
	return items
}

func normalize(ing model.Ingredient) (qty float64, unit, name string, ok bool) {
	switch {
	case ing.Name != "":
		qty, unit, name = ing.Amount, ing.Unit, strings.TrimSpace(ing.Name)
		if qty == 0 {
			qty = 1
		}
		if unit == "" {
			unit = defaultUnit
		}
	case ing.Raw != "":
		p := ParseIngredient(ing.Raw)
		qty, unit, name = p.Quantity, p.Unit, p.Name
	}
	return qty, unit, name, name != ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
