package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/plateful/internal/insights"
	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/recipe"
)

const (
	defaultTrendWeeks = 4
	maxTrendWeeks     = 26
)

type InsightsHandler struct {
	plans   *mealplan.Service
	catalog *recipe.Catalog
	now     func() time.Time
	logger  *slog.Logger
}

func NewInsightsHandler(plans *mealplan.Service, catalog *recipe.Catalog, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{plans: plans, catalog: catalog, now: time.Now, logger: logger}
}

func (h *InsightsHandler) week(w http.ResponseWriter, r *http.Request) (string, bool) {
	week, err := mealplan.ParseWeek(r.URL.Query().Get("week"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return week, true
}

// Nutrition reports the week's nutrition totals and macro split. Nutrition
// is null when no planned recipe carries nutrition data.
func (h *InsightsHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	plan, err := h.plans.Lookup(week)
	if err != nil {
		h.logger.Error("get meal plan", "week", week, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meal plan")
		return
	}

	recipes, fallback := h.catalog.All()
	if fallback {
		w.Header().Set(FallbackHeader, "sample")
	}
	summary := insights.WeekNutrition(plan, recipes)
	writeJSON(w, http.StatusOK, map[string]any{
		"week":      week,
		"nutrition": summary,
		"macros":    insights.Macros(summary),
	})
}

// Meals reports the home-cooked, eaten-out and skipped tally of each of the
// last weeks (4 by default) ending at week.
func (h *InsightsHandler) Meals(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	n := defaultTrendWeeks
	if s := r.URL.Query().Get("weeks"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > maxTrendWeeks {
			writeError(w, http.StatusBadRequest, "weeks must be between 1 and "+strconv.Itoa(maxTrendWeeks))
			return
		}
		n = v
	}

	weeks, plans, err := h.plans.Recent(week, n)
	if err != nil {
		h.logger.Error("recent meal plans", "week", week, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meal plans")
		return
	}
	writeJSON(w, http.StatusOK, insights.Trend(weeks, plans))
}

func (h *InsightsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.plans.Streak(r.Context())
	if err != nil {
		h.logger.Error("home cooked streak", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute streak")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}
