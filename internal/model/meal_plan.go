package model

import (
	"encoding/json"
	"time"
)

var Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// MealState is the single canonical state of a meal slot.
type MealState string

const (
	MealEmpty    MealState = "empty"
	MealPlanned  MealState = "planned"
	MealCooked   MealState = "cooked"
	MealEatenOut MealState = "eaten_out"
	MealSkipped  MealState = "skipped"
)

var MealStates = []MealState{MealEmpty, MealPlanned, MealCooked, MealEatenOut, MealSkipped}

func (s MealState) Valid() bool {
	switch s {
	case MealEmpty, MealPlanned, MealCooked, MealEatenOut, MealSkipped:
		return true
	}
	return false
}

// CarriesRecipe reports whether meals in this state hold a recipe snapshot.
func (s MealState) CarriesRecipe() bool {
	return s == MealPlanned || s == MealCooked
}

// Meal is one (day, meal type) cell. Recipe is non-nil exactly when
// State.CarriesRecipe() is true.
type Meal struct {
	State       MealState  `json:"state"`
	Recipe      *RecipeRef `json:"recipe"`
	Notes       string     `json:"notes"`
	PlannedAt   *time.Time `json:"plannedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func EmptyMeal() Meal {
	return Meal{State: MealEmpty}
}

func PlannedMeal(ref *RecipeRef, at time.Time) Meal {
	return Meal{State: MealPlanned, Recipe: ref, PlannedAt: &at}
}

func EatenOutMeal(notes string) Meal {
	return Meal{State: MealEatenOut, Notes: notes}
}

func SkippedMeal() Meal {
	return Meal{State: MealSkipped}
}

func (m Meal) HasRecipe() bool {
	return m.Recipe != nil && m.State.CarriesRecipe()
}

func (m Meal) IsEmpty() bool {
	return m.State == MealEmpty || m.State == ""
}

// Valid reports whether the recipe/state pairing holds.
func (m Meal) Valid() bool {
	if !m.State.Valid() {
		return false
	}
	return m.State.CarriesRecipe() == (m.Recipe != nil)
}

// UnmarshalJSON accepts both the canonical {"state": ...} form and older records
// that used a nullable "status" next to the recipe.
func (m *Meal) UnmarshalJSON(data []byte) error {
	var raw struct {
		State       MealState  `json:"state"`
		Status      *string    `json:"status"`
		Recipe      *RecipeRef `json:"recipe"`
		Notes       string     `json:"notes"`
		PlannedAt   *time.Time `json:"plannedAt"`
		CompletedAt *time.Time `json:"completedAt"`
		UpdatedAt   *time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Meal{
		State:       raw.State,
		Recipe:      raw.Recipe,
		Notes:       raw.Notes,
		PlannedAt:   raw.PlannedAt,
		CompletedAt: raw.CompletedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	if m.State == "" {
		var status string
		if raw.Status != nil {
			status = *raw.Status
		}
		m.State = legacyState(status, raw.Recipe != nil)
	}
	m.normalize()
	return nil
}

func legacyState(status string, hasRecipe bool) MealState {
	switch status {
	case "eaten_out":
		return MealEatenOut
	case "skipped", "skip":
		return MealSkipped
	case "cooked":
		if hasRecipe {
			return MealCooked
		}
	case "", "planned":
		if hasRecipe {
			return MealPlanned
		}
	}
	return MealEmpty
}

// normalize forces the recipe/state invariant, degrading to empty when a
// recipe-carrying state has no recipe.
func (m *Meal) normalize() {
	if !m.State.Valid() {
		m.State = MealEmpty
	}
	if m.State.CarriesRecipe() && m.Recipe == nil {
		m.State = MealEmpty
	}
	if !m.State.CarriesRecipe() {
		m.Recipe = nil
	}
	if m.State == MealEmpty {
		m.PlannedAt = nil
		m.CompletedAt = nil
	}
}

type MealPlan struct {
	ID            string                     `json:"id"`
	WeekStartDate string                     `json:"weekStartDate"`
	Meals         map[string]map[string]Meal `json:"meals"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

// NewMealPlan returns a plan for the given week with every slot empty.
func NewMealPlan(id, weekStartDate string) *MealPlan {
	now := time.Now().UTC()
	p := &MealPlan{
		ID:            id,
		WeekStartDate: weekStartDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Fill()
	return p
}

// Fill adds an empty meal to every slot that has none.
func (p *MealPlan) Fill() {
	if p.Meals == nil {
		p.Meals = make(map[string]map[string]Meal, len(Days))
	}
	for _, day := range Days {
		if p.Meals[day] == nil {
			p.Meals[day] = make(map[string]Meal, len(MealTypes))
		}
		for _, mt := range MealTypes {
			if _, ok := p.Meals[day][mt]; !ok {
				p.Meals[day][mt] = EmptyMeal()
			}
		}
	}
}

// Meal returns the meal in a slot, or an empty meal when the slot is unset.
func (p *MealPlan) Meal(day, mealType string) Meal {
	if p == nil || p.Meals == nil {
		return EmptyMeal()
	}
	m, ok := p.Meals[day][mealType]
	if !ok {
		return EmptyMeal()
	}
	return m
}

// SetMeal stores m in a slot, creating the day row if needed.
func (p *MealPlan) SetMeal(day, mealType string, m Meal) {
	p.Fill()
	m.normalize()
	p.Meals[day][mealType] = m
}

func (p *MealPlan) UnmarshalJSON(data []byte) error {
	type plain MealPlan
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = MealPlan(v)
	p.Fill()
	return nil
}

// Clone returns a deep copy so callers can mutate a shared plan safely.
func (p *MealPlan) Clone() *MealPlan {
	if p == nil {
		return nil
	}
	c := *p
	c.Meals = make(map[string]map[string]Meal, len(p.Meals))
	for day, slots := range p.Meals {
		row := make(map[string]Meal, len(slots))
		for mt, m := range slots {
			if m.Recipe != nil {
				ref := *m.Recipe
				m.Recipe = &ref
			}
			row[mt] = m
		}
		c.Meals[day] = row
	}
	return &c
}
