package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dukerupert/plateful/internal/insights"
	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/planner"
)

type nutritionResponse struct {
	Week      string                     `json:"week"`
	Nutrition *insights.NutritionSummary `json:"nutrition"`
	Macros    insights.MacroSplit        `json:"macros"`
}

func TestInsightsNutrition(t *testing.T) {
	env := newTestEnv(t, planner.Config{})
	ctx := context.Background()

	rec := serve(t, env.insightH.Nutrition, http.MethodGet, "/api/insights/nutrition?week="+testWeek, nil)
	empty := decode[map[string]any](t, rec)
	if empty["nutrition"] != nil {
		t.Errorf("empty week nutrition = %v, want null", empty["nutrition"])
	}

	carbonara, _ := env.catalog.Get("1")
	quinoa, _ := env.catalog.Get("2")
	env.plans.AssignRecipe(ctx, testWeek, "monday", "dinner", *carbonara, "")
	env.plans.AssignRecipe(ctx, testWeek, "tuesday", "lunch", *quinoa, "")

	rec = serve(t, env.insightH.Nutrition, http.MethodGet, "/api/insights/nutrition?week=2024-01-07", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[nutritionResponse](t, rec)
	if got.Week != testWeek || got.Nutrition == nil || got.Nutrition.MealCount != 2 {
		t.Fatalf("nutrition = %+v", got)
	}
	wantCalories := carbonara.Nutrition.Calories + quinoa.Nutrition.Calories
	if got.Nutrition.Calories < wantCalories-1 || got.Nutrition.Calories > wantCalories+1 {
		t.Errorf("calories = %v, want about %v", got.Nutrition.Calories, wantCalories)
	}
	if sum := got.Macros.Protein + got.Macros.Carbs + got.Macros.Fat; sum < 99 || sum > 101 {
		t.Errorf("macro split = %+v", got.Macros)
	}

	if rec := serve(t, env.insightH.Nutrition, http.MethodGet, "/api/insights/nutrition?week=nope", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad week status = %d", rec.Code)
	}
}

func TestInsightsMeals(t *testing.T) {
	env := newTestEnv(t, planner.Config{})
	ctx := context.Background()

	carbonara, _ := env.catalog.Get("1")
	env.plans.AssignRecipe(ctx, testWeek, "monday", "dinner", *carbonara, "")
	env.plans.SetStatus(ctx, testWeek, "tuesday", "dinner", model.MealEatenOut)
	env.plans.SetStatus(ctx, "2023-12-25", "friday", "lunch", model.MealSkipped)

	rec := serve(t, env.insightH.Meals, http.MethodGet, "/api/insights/meals?week="+testWeek, nil)
	tallies := decode[[]insights.Tally](t, rec)
	if len(tallies) != 4 {
		t.Fatalf("tallies = %d, want 4", len(tallies))
	}
	if tallies[0].Week != "2023-12-11" || tallies[0].HasData {
		t.Errorf("oldest = %+v", tallies[0])
	}
	if tallies[2].Skipped != 1 {
		t.Errorf("previous week = %+v", tallies[2])
	}
	if last := tallies[3]; last.HomeCooked != 1 || last.EatenOut != 1 || last.Week != testWeek {
		t.Errorf("this week = %+v", last)
	}

	rec = serve(t, env.insightH.Meals, http.MethodGet, "/api/insights/meals?week="+testWeek+"&weeks=2", nil)
	if tallies := decode[[]insights.Tally](t, rec); len(tallies) != 2 {
		t.Errorf("tallies = %d, want 2", len(tallies))
	}

	for _, weeks := range []string{"0", "abc", "100"} {
		rec := serve(t, env.insightH.Meals, http.MethodGet, "/api/insights/meals?weeks="+weeks, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("weeks=%s status = %d", weeks, rec.Code)
		}
	}
}

func TestInsightsStreak(t *testing.T) {
	env := newTestEnv(t, planner.Config{})
	ctx := context.Background()

	rec := serve(t, env.insightH.Streak, http.MethodGet, "/api/insights/streak", nil)
	if got := decode[map[string]int](t, rec); got["streak"] != 0 {
		t.Errorf("streak = %d, want 0", got["streak"])
	}

	now := time.Now()
	week := mealplan.WeekKey(now)
	day := mealplan.DayName(now)
	carbonara, _ := env.catalog.Get("1")
	env.plans.AssignRecipe(ctx, week, day, "dinner", *carbonara, "")
	env.plans.SetStatus(ctx, week, day, "dinner", model.MealCooked)

	rec = serve(t, env.insightH.Streak, http.MethodGet, "/api/insights/streak", nil)
	if got := decode[map[string]int](t, rec); got["streak"] != 1 {
		t.Errorf("streak = %d, want 1", got["streak"])
	}
}
