package store

import (
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

func TestMealPlanGetOrCreate(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	p, created, err := ms.GetOrCreate("2024-01-01")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Error("expected first call to create")
	}
	if p.WeekStartDate != "2024-01-01" {
		t.Errorf("week = %q", p.WeekStartDate)
	}
	if !p.Meal("monday", "dinner").IsEmpty() {
		t.Error("new plan should have empty slots")
	}

	again, created, err := ms.GetOrCreate("2024-01-01")
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if created {
		t.Error("second call should not create")
	}
	if again.ID != p.ID {
		t.Errorf("id = %q, want %q", again.ID, p.ID)
	}
}

func TestMealPlanGetOrCreateConcurrent(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, _, err := ms.GetOrCreate("2024-02-05")
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("got different plan ids %q and %q", ids[0], id)
		}
	}
	plans, err := ms.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(plans) != 1 {
		t.Errorf("plans = %d, want 1", len(plans))
	}
}

func TestMealPlanSaveMeal(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))
	p, _, _ := ms.GetOrCreate("2024-01-01")

	planned := model.PlannedMeal(&model.RecipeRef{ID: "1", Name: "Carbonara"}, time.Now())
	if err := ms.SaveMeal(p.ID, "monday", "dinner", planned); err != nil {
		t.Fatalf("save planned: %v", err)
	}
	if err := ms.SaveMeal(p.ID, "friday", "dinner", model.EatenOutMeal("Eat out")); err != nil {
		t.Fatalf("save eaten out: %v", err)
	}

	got, err := ms.GetByWeek("2024-01-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	dinner := got.Meal("monday", "dinner")
	if dinner.State != model.MealPlanned || dinner.Recipe == nil || dinner.Recipe.Name != "Carbonara" {
		t.Errorf("monday dinner = %+v", dinner)
	}
	if dinner.PlannedAt == nil {
		t.Error("expected planned_at")
	}
	friday := got.Meal("friday", "dinner")
	if friday.State != model.MealEatenOut || friday.Notes != "Eat out" {
		t.Errorf("friday dinner = %+v", friday)
	}

	// Clearing deletes the row.
	if err := ms.SaveMeal(p.ID, "monday", "dinner", model.EmptyMeal()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = ms.GetByWeek("2024-01-01")
	if !got.Meal("monday", "dinner").IsEmpty() {
		t.Error("monday dinner should be empty after clear")
	}
}

func TestMealPlanSaveMealRejectsInvalid(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))
	p, _, _ := ms.GetOrCreate("2024-01-01")

	err := ms.SaveMeal(p.ID, "monday", "dinner", model.Meal{State: model.MealCooked})
	if err == nil {
		t.Fatal("expected error for cooked meal without recipe")
	}
}

func TestMealPlanGetByWeekMissing(t *testing.T) {
	ms := NewMealPlanStore(setupTestDB(t))

	p, err := ms.GetByWeek("2030-01-07")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}
