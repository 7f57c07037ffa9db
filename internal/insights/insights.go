// Package insights summarizes meal plans into nutrition totals and
// home-cooked versus eaten-out tallies.
package insights

import (
	"math"

	"github.com/dukerupert/plateful/internal/model"
)

// NutritionSummary holds a week's nutrient totals, rounded to whole units.
type NutritionSummary struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	MealCount int     `json:"mealCount"`
}

// WeekNutrition sums the nutrition of every recipe meal in plan whose recipe
// resolves in the catalog and carries nutrition data. It returns nil when no
// meal contributes.
func WeekNutrition(plan *model.MealPlan, recipes []model.Recipe) *NutritionSummary {
	if plan == nil {
		return nil
	}
	byID := make(map[string]*model.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}

	var sum NutritionSummary
	for _, day := range model.Days {
		for _, mt := range model.MealTypes {
			meal := plan.Meal(day, mt)
			if !meal.HasRecipe() {
				continue
			}
			r, ok := byID[meal.Recipe.ID]
			if !ok || r.Nutrition == nil {
				continue
			}
			sum.Calories += r.Nutrition.Calories
			sum.Protein += r.Nutrition.Protein
			sum.Carbs += r.Nutrition.Carbs
			sum.Fat += r.Nutrition.Fat
			sum.Fiber += r.Nutrition.Fiber
			sum.MealCount++
		}
	}
	if sum.MealCount == 0 {
		return nil
	}

	sum.Calories = math.Round(sum.Calories)
	sum.Protein = math.Round(sum.Protein)
	sum.Carbs = math.Round(sum.Carbs)
	sum.Fat = math.Round(sum.Fat)
	sum.Fiber = math.Round(sum.Fiber)
	return &sum
}

// MacroSplit is the share of protein, carbs and fat in whole percent.
type MacroSplit struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// Macros splits protein, carbs and fat by weight. All zero for a nil or
// macro-free summary.
func Macros(s *NutritionSummary) MacroSplit {
	if s == nil {
		return MacroSplit{}
	}
	total := s.Protein + s.Carbs + s.Fat
	if total <= 0 {
		return MacroSplit{}
	}
	pct := func(v float64) int { return int(math.Round(100 * v / total)) }
	return MacroSplit{Protein: pct(s.Protein), Carbs: pct(s.Carbs), Fat: pct(s.Fat)}
}

// Tally counts how a week's meals were resolved.
type Tally struct {
	Week       string `json:"week"`
	HomeCooked int    `json:"homeCooked"`
	EatenOut   int    `json:"eatenOut"`
	Skipped    int    `json:"skipped"`
	HasData    bool   `json:"hasData"`
}

// WeekTally counts recipe meals (planned or cooked) as home cooked. A nil
// plan yields a zero tally.
func WeekTally(plan *model.MealPlan) Tally {
	var t Tally
	if plan == nil {
		return t
	}
	t.Week = plan.WeekStartDate
	for _, day := range model.Days {
		for _, mt := range model.MealTypes {
			switch plan.Meal(day, mt).State {
			case model.MealPlanned, model.MealCooked:
				t.HomeCooked++
			case model.MealEatenOut:
				t.EatenOut++
			case model.MealSkipped:
				t.Skipped++
			}
		}
	}
	t.HasData = t.HomeCooked+t.EatenOut+t.Skipped > 0
	return t
}

// Trend tallies each week in order. plans[i] belongs to weeks[i] and may be
// nil for a week without a stored plan.
func Trend(weeks []string, plans []*model.MealPlan) []Tally {
	out := make([]Tally, len(weeks))
	for i, week := range weeks {
		var plan *model.MealPlan
		if i < len(plans) {
			plan = plans[i]
		}
		out[i] = WeekTally(plan)
		out[i].Week = week
	}
	return out
}
