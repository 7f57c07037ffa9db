package mealplan

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

var carbonara = &model.RecipeRef{ID: "1", Name: "Classic Spaghetti Carbonara"}

func TestAssignAndRemove(t *testing.T) {
	plan := model.NewMealPlan("p", "2024-01-01")
	now := time.Now()

	m, err := Assign(plan, "monday", "dinner", carbonara, "date night", now)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if m.State != model.MealPlanned || m.Recipe.ID != "1" || m.Notes != "date night" {
		t.Errorf("assigned meal = %+v", m)
	}
	if m.PlannedAt == nil {
		t.Error("expected PlannedAt")
	}

	if err := Remove(plan, "monday", "dinner"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !plan.Meal("monday", "dinner").IsEmpty() {
		t.Error("slot should be empty after remove")
	}
}

func TestAssignRejectsBadInput(t *testing.T) {
	plan := model.NewMealPlan("p", "2024-01-01")
	now := time.Now()

	tests := []struct {
		name     string
		day      string
		mealType string
		ref      *model.RecipeRef
		want     error
	}{
		{"bad day", "funday", "dinner", carbonara, ErrInvalidDay},
		{"bad meal type", "monday", "brunch", carbonara, ErrInvalidMealType},
		{"nil recipe", "monday", "dinner", nil, ErrNoRecipe},
		{"empty id", "monday", "dinner", &model.RecipeRef{Name: "x"}, ErrNoRecipe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assign(plan, tt.day, tt.mealType, tt.ref, "", now)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	now := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)

	t.Run("cooked keeps recipe and stamps completion", func(t *testing.T) {
		plan := model.NewMealPlan("p", "2024-01-01")
		Assign(plan, "monday", "dinner", carbonara, "", now)

		m, err := SetStatus(plan, "monday", "dinner", model.MealCooked, now)
		if err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if m.State != model.MealCooked || m.Recipe == nil || m.CompletedAt == nil {
			t.Errorf("meal = %+v", m)
		}

		m, _ = SetStatus(plan, "monday", "dinner", model.MealPlanned, now)
		if m.CompletedAt != nil {
			t.Error("back to planned should clear completion")
		}
	})

	t.Run("eaten out drops recipe", func(t *testing.T) {
		plan := model.NewMealPlan("p", "2024-01-01")
		Assign(plan, "monday", "dinner", carbonara, "", now)

		m, err := SetStatus(plan, "monday", "dinner", model.MealEatenOut, now)
		if err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if m.State != model.MealEatenOut || m.Recipe != nil {
			t.Errorf("meal = %+v", m)
		}
		if !m.Valid() {
			t.Error("meal violates recipe/state invariant")
		}
	})

	t.Run("skipped on empty slot", func(t *testing.T) {
		plan := model.NewMealPlan("p", "2024-01-01")
		m, err := SetStatus(plan, "friday", "lunch", model.MealSkipped, now)
		if err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if m.State != model.MealSkipped {
			t.Errorf("state = %q", m.State)
		}
	})

	t.Run("cooked without recipe", func(t *testing.T) {
		plan := model.NewMealPlan("p", "2024-01-01")
		_, err := SetStatus(plan, "friday", "lunch", model.MealCooked, now)
		if !errors.Is(err, ErrNoRecipe) {
			t.Errorf("err = %v, want ErrNoRecipe", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		plan := model.NewMealPlan("p", "2024-01-01")
		_, err := SetStatus(plan, "friday", "lunch", "eaten", now)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestCountByStatus(t *testing.T) {
	now := time.Now()
	plan := model.NewMealPlan("p", "2024-01-01")
	Assign(plan, "monday", "dinner", carbonara, "", now)
	Assign(plan, "tuesday", "dinner", carbonara, "", now)
	SetStatus(plan, "tuesday", "dinner", model.MealCooked, now)
	SetStatus(plan, "wednesday", "dinner", model.MealEatenOut, now)
	SetStatus(plan, "thursday", "dinner", model.MealEatenOut, now)
	SetStatus(plan, "friday", "lunch", model.MealSkipped, now)

	got := CountByStatus(plan)
	want := StatusCounts{Planned: 1, Cooked: 1, EatenOut: 2, Skipped: 1}
	if got != want {
		t.Errorf("CountByStatus = %+v, want %+v", got, want)
	}
}

func TestHomeCookedStreak(t *testing.T) {
	// Wednesday 2024-01-10; the previous week starts 2024-01-01.
	today := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)

	cook := func(plan *model.MealPlan, days ...string) {
		for _, d := range days {
			Assign(plan, d, "dinner", carbonara, "", today)
			SetStatus(plan, d, "dinner", model.MealCooked, today)
		}
	}

	t.Run("spans weeks", func(t *testing.T) {
		prev := model.NewMealPlan("a", "2024-01-01")
		cur := model.NewMealPlan("b", "2024-01-08")
		cook(prev, "saturday", "sunday")
		cook(cur, "monday", "tuesday", "wednesday")
		plans := map[string]*model.MealPlan{"2024-01-01": prev, "2024-01-08": cur}

		if got := HomeCookedStreak(plans, today); got != 5 {
			t.Errorf("streak = %d, want 5", got)
		}
	})

	t.Run("today not cooked yet", func(t *testing.T) {
		cur := model.NewMealPlan("b", "2024-01-08")
		cook(cur, "monday", "tuesday")
		plans := map[string]*model.MealPlan{"2024-01-08": cur}

		if got := HomeCookedStreak(plans, today); got != 2 {
			t.Errorf("streak = %d, want 2", got)
		}
	})

	t.Run("gap breaks streak", func(t *testing.T) {
		cur := model.NewMealPlan("b", "2024-01-08")
		cook(cur, "monday", "wednesday")
		plans := map[string]*model.MealPlan{"2024-01-08": cur}

		if got := HomeCookedStreak(plans, today); got != 1 {
			t.Errorf("streak = %d, want 1", got)
		}
	})

	t.Run("eaten out does not count", func(t *testing.T) {
		cur := model.NewMealPlan("b", "2024-01-08")
		SetStatus(cur, "tuesday", "dinner", model.MealEatenOut, today)
		SetStatus(cur, "wednesday", "dinner", model.MealEatenOut, today)
		plans := map[string]*model.MealPlan{"2024-01-08": cur}

		if got := HomeCookedStreak(plans, today); got != 0 {
			t.Errorf("streak = %d, want 0", got)
		}
	})
}
