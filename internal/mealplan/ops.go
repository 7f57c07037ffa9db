package mealplan

import (
	"errors"
	"slices"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

var (
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidMealType = errors.New("invalid meal type")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNoRecipe        = errors.New("meal has no recipe")
)

// ValidateSlot checks that day and mealType name a cell of the weekly grid.
func ValidateSlot(day, mealType string) error {
	if !slices.Contains(model.Days, day) {
		return ErrInvalidDay
	}
	if !slices.Contains(model.MealTypes, mealType) {
		return ErrInvalidMealType
	}
	return nil
}

// Assign puts a recipe in a slot as a fresh planned meal.
func Assign(plan *model.MealPlan, day, mealType string, ref *model.RecipeRef, notes string, now time.Time) (model.Meal, error) {
	if err := ValidateSlot(day, mealType); err != nil {
		return model.Meal{}, err
	}
	if ref == nil || ref.ID == "" {
		return model.Meal{}, ErrNoRecipe
	}
	m := model.PlannedMeal(ref, now)
	m.Notes = notes
	m.UpdatedAt = &now
	plan.SetMeal(day, mealType, m)
	return plan.Meal(day, mealType), nil
}

// Remove clears a slot back to empty.
func Remove(plan *model.MealPlan, day, mealType string) error {
	if err := ValidateSlot(day, mealType); err != nil {
		return err
	}
	plan.SetMeal(day, mealType, model.EmptyMeal())
	return nil
}

// SetStatus moves a slot to a new state. Planned and cooked keep the slot's
// recipe and fail with ErrNoRecipe when there is none; cooking stamps
// CompletedAt. Eaten out and skipped drop the recipe.
func SetStatus(plan *model.MealPlan, day, mealType string, status model.MealState, now time.Time) (model.Meal, error) {
	if err := ValidateSlot(day, mealType); err != nil {
		return model.Meal{}, err
	}
	if !status.Valid() {
		return model.Meal{}, ErrInvalidStatus
	}

	m := plan.Meal(day, mealType)
	switch status {
	case model.MealPlanned, model.MealCooked:
		if !m.HasRecipe() {
			return model.Meal{}, ErrNoRecipe
		}
		m.State = status
		if status == model.MealCooked {
			m.CompletedAt = &now
		} else {
			m.CompletedAt = nil
		}
	case model.MealEatenOut, model.MealSkipped:
		m.State = status
		m.Recipe = nil
		m.CompletedAt = nil
		if status == model.MealEatenOut {
			m.CompletedAt = &now
		}
	case model.MealEmpty:
		m = model.EmptyMeal()
	}
	if status != model.MealEmpty {
		m.UpdatedAt = &now
	}

	plan.SetMeal(day, mealType, m)
	return plan.Meal(day, mealType), nil
}

// StatusCounts tallies the non-empty slots of a plan.
type StatusCounts struct {
	Planned  int `json:"planned"`
	Cooked   int `json:"cooked"`
	EatenOut int `json:"eaten_out"`
	Skipped  int `json:"skipped"`
}

// CountByStatus counts every non-empty slot by its state.
func CountByStatus(plan *model.MealPlan) StatusCounts {
	var c StatusCounts
	for _, day := range model.Days {
		for _, mt := range model.MealTypes {
			switch plan.Meal(day, mt).State {
			case model.MealPlanned:
				c.Planned++
			case model.MealCooked:
				c.Cooked++
			case model.MealEatenOut:
				c.EatenOut++
			case model.MealSkipped:
				c.Skipped++
			}
		}
	}
	return c
}

// CookedOn reports whether any meal on the given day was cooked at home.
func CookedOn(plan *model.MealPlan, day string) bool {
	for _, mt := range model.MealTypes {
		if plan.Meal(day, mt).State == model.MealCooked {
			return true
		}
	}
	return false
}

// HomeCookedStreak counts consecutive days with at least one cooked meal,
// ending today. A today without a cooked meal yet does not break the streak;
// counting then starts from yesterday. plans maps week keys to stored plans;
// a missing week ends the streak.
func HomeCookedStreak(plans map[string]*model.MealPlan, today time.Time) int {
	cooked := func(t time.Time) bool {
		plan, ok := plans[WeekKey(t)]
		if !ok || plan == nil {
			return false
		}
		return CookedOn(plan, DayName(t))
	}

	day := today
	if !cooked(day) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for cooked(day) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
