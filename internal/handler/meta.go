package handler

import (
	"net/http"

	"github.com/dukerupert/plateful/internal/grocery"
	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/planner"
)

type metaResponse struct {
	Categories      []grocery.CategoryInfo `json:"categories"`
	Units           []string               `json:"units"`
	Days            []string               `json:"days"`
	MealTypes       []string               `json:"mealTypes"`
	Statuses        []model.MealState      `json:"statuses"`
	Difficulties    []model.Difficulty     `json:"difficulties"`
	DietaryOptions  []string               `json:"dietaryOptions"`
	CuisineOptions  []string               `json:"cuisineOptions"`
	MealComplexity  []string               `json:"mealComplexity"`
	PlannerProvider string                 `json:"plannerProvider"`
}

// Meta returns the fixed option lists the client renders pickers from.
func Meta(provider string) http.HandlerFunc {
	resp := metaResponse{
		Categories:      grocery.AllCategoryInfo(),
		Units:           grocery.Units,
		Days:            model.Days,
		MealTypes:       model.MealTypes,
		Statuses:        model.MealStates,
		Difficulties:    model.Difficulties,
		DietaryOptions:  planner.DietaryOptions,
		CuisineOptions:  planner.CuisineOptions,
		MealComplexity:  []string{planner.ComplexitySimple, planner.ComplexityMedium, planner.ComplexityComplex},
		PlannerProvider: provider,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}
