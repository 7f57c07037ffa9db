package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/planner"
)

const testWeek = "2024-01-01"

func slot(week, day, mealType string) []string {
	return []string{"week", week, "day", day, "meal_type", mealType}
}

func TestMealPlanGet(t *testing.T) {
	env := newTestEnv(t, planner.Config{})

	rec := serve(t, env.mealH.Get, http.MethodGet, "/", nil, "week", "2024-01-04")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	plan := decode[model.MealPlan](t, rec)
	if plan.WeekStartDate != testWeek {
		t.Errorf("week = %q, want Monday %q", plan.WeekStartDate, testWeek)
	}
	if len(plan.Meals) != 7 || plan.Meal("sunday", "snack").State != model.MealEmpty {
		t.Errorf("meals = %+v", plan.Meals)
	}

	rec = serve(t, env.mealH.Get, http.MethodGet, "/", nil, "week", "current")
	if rec.Code != http.StatusOK {
		t.Errorf("current status = %d", rec.Code)
	}

	rec = serve(t, env.mealH.Get, http.MethodGet, "/", nil, "week", "next tuesday")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad week status = %d", rec.Code)
	}
}

func TestMealPlanSlotUpdates(t *testing.T) {
	env := newTestEnv(t, planner.Config{})

	rec := serve(t, env.mealH.Assign, http.MethodPut, "/", map[string]string{"recipeId": "1", "notes": "double batch"}, slot(testWeek, "monday", "dinner")...)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign status = %d: %s", rec.Code, rec.Body)
	}
	meal := decode[*model.MealPlan](t, rec).Meal("monday", "dinner")
	if meal.State != model.MealPlanned || meal.Recipe == nil || meal.Recipe.Name != "Classic Spaghetti Carbonara" || meal.Notes != "double batch" {
		t.Errorf("meal = %+v", meal)
	}

	rec = serve(t, env.mealH.SetStatus, http.MethodPut, "/", map[string]string{"status": "cooked"}, slot(testWeek, "monday", "dinner")...)
	if rec.Code != http.StatusOK {
		t.Fatalf("status update = %d", rec.Code)
	}
	meal = decode[*model.MealPlan](t, rec).Meal("monday", "dinner")
	if meal.State != model.MealCooked || meal.CompletedAt == nil {
		t.Errorf("cooked meal = %+v", meal)
	}

	serve(t, env.mealH.SetStatus, http.MethodPut, "/", map[string]string{"status": "eaten_out"}, slot(testWeek, "tuesday", "lunch")...)

	rec = serve(t, env.mealH.Stats, http.MethodGet, "/", nil, "week", testWeek)
	counts := decode[mealplan.StatusCounts](t, rec)
	if counts != (mealplan.StatusCounts{Cooked: 1, EatenOut: 1}) {
		t.Errorf("counts = %+v", counts)
	}

	rec = serve(t, env.mealH.Remove, http.MethodDelete, "/", nil, slot(testWeek, "monday", "dinner")...)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	if m := decode[*model.MealPlan](t, rec).Meal("monday", "dinner"); m.State != model.MealEmpty || m.Recipe != nil {
		t.Errorf("removed meal = %+v", m)
	}
}

func TestMealPlanSlotErrors(t *testing.T) {
	env := newTestEnv(t, planner.Config{})

	tests := []struct {
		name   string
		h      http.HandlerFunc
		body   any
		path   []string
		status int
	}{
		{"bad day", env.mealH.Assign, map[string]string{"recipeId": "1"}, slot(testWeek, "funday", "dinner"), http.StatusBadRequest},
		{"bad meal type", env.mealH.Assign, map[string]string{"recipeId": "1"}, slot(testWeek, "monday", "brunch"), http.StatusBadRequest},
		{"missing recipe id", env.mealH.Assign, map[string]string{}, slot(testWeek, "monday", "dinner"), http.StatusBadRequest},
		{"unknown recipe", env.mealH.Assign, map[string]string{"recipeId": "999"}, slot(testWeek, "monday", "dinner"), http.StatusNotFound},
		{"invalid json", env.mealH.Assign, "{", slot(testWeek, "monday", "dinner"), http.StatusBadRequest},
		{"bad status", env.mealH.SetStatus, map[string]string{"status": "eaten"}, slot(testWeek, "monday", "dinner"), http.StatusBadRequest},
		{"cook empty slot", env.mealH.SetStatus, map[string]string{"status": "cooked"}, slot(testWeek, "monday", "dinner"), http.StatusBadRequest},
		{"remove bad day", env.mealH.Remove, nil, slot(testWeek, "someday", "dinner"), http.StatusBadRequest},
		{"bad week", env.mealH.Remove, nil, slot("01/02/2024", "monday", "dinner"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.h, http.MethodPut, "/", tt.body, tt.path...)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if errorOf(t, rec) == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestMealPlanGenerateDemo(t *testing.T) {
	env := newTestEnv(t, planner.Config{})

	body := map[string]any{"preferences": map[string]any{"eatOutFrequency": 0}}
	rec := serve(t, env.mealH.Generate, http.MethodPost, "/", body, "week", testWeek)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	plan := decode[model.MealPlan](t, rec)

	for _, day := range model.Days {
		for _, mt := range []string{"breakfast", "lunch", "dinner"} {
			if m := plan.Meal(day, mt); m.State != model.MealPlanned || m.Recipe == nil {
				t.Errorf("%s %s = %+v", day, mt, m)
			}
		}
		if m := plan.Meal(day, "snack"); m.State != model.MealEmpty {
			t.Errorf("%s snack = %+v", day, m)
		}
	}

	body = map[string]any{"preferences": map[string]any{"eatOutFrequency": "3"}}
	rec = serve(t, env.mealH.Generate, http.MethodPost, "/", body, "week", testWeek)
	counts := mealplan.CountByStatus(ptr(decode[model.MealPlan](t, rec)))
	if counts.EatenOut != 3 || counts.Planned != 18 {
		t.Errorf("counts = %+v", counts)
	}
}

func ptr[T any](v T) *T { return &v }

func TestMealPlanGenerateErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/garbage":
			w.Write([]byte(`{"content":[{"type":"text","text":"Sorry, I cannot help with that."}]}`))
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Claude API error: invalid x-api-key"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Internal server error"}`))
		}
	}))
	defer upstream.Close()

	tests := []struct {
		name    string
		path    string
		apiKey  string
		status  int
		wantErr string
	}{
		{"missing key", "/garbage", "", http.StatusBadRequest, planner.ErrMissingAPIKey.Error()},
		{"unparseable", "/garbage", "sk", http.StatusBadGateway, "Failed to parse AI meal plan response"},
		{"upstream auth", "/denied", "sk", http.StatusUnauthorized, "Claude API error: invalid x-api-key"},
		{"upstream down", "/down", "sk", http.StatusBadGateway, "Claude API error: Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, planner.Config{Provider: planner.ProviderClaude, ClaudeProxyURL: upstream.URL + tt.path})
			rec := serve(t, env.mealH.Generate, http.MethodPost, "/", map[string]any{"apiKey": tt.apiKey}, "week", testWeek)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if got := errorOf(t, rec); got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}

			plan, _ := env.plans.Lookup(testWeek)
			if plan != nil && mealplan.CountByStatus(plan) != (mealplan.StatusCounts{}) {
				t.Error("failed generation changed the plan")
			}
		})
	}
}
