package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/plateful/internal/llm"
	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/planner"
	"github.com/dukerupert/plateful/internal/recipe"
	"github.com/dukerupert/plateful/internal/websocket"
)

type MealPlanHandler struct {
	notifier
	plans   *mealplan.Service
	catalog *recipe.Catalog
	planner *planner.Planner
	now     func() time.Time
	logger  *slog.Logger
}

func NewMealPlanHandler(plans *mealplan.Service, catalog *recipe.Catalog, p *planner.Planner, hub *websocket.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{notifier: notifier{hub}, plans: plans, catalog: catalog, planner: p, now: time.Now, logger: logger}
}

// week reads the {week} path value. It writes a 400 and returns false when
// the value is not a date or "current".
func (h *MealPlanHandler) week(w http.ResponseWriter, r *http.Request) (string, bool) {
	week, err := mealplan.ParseWeek(r.PathValue("week"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return week, true
}

// writePlanError maps meal plan errors to a response.
func (h *MealPlanHandler) writePlanError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, mealplan.ErrInvalidDay):
		writeError(w, http.StatusBadRequest, "day must be monday through sunday")
	case errors.Is(err, mealplan.ErrInvalidMealType):
		writeError(w, http.StatusBadRequest, "meal type must be breakfast, lunch, dinner, or snack")
	case errors.Is(err, mealplan.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "status must be empty, planned, cooked, eaten_out, or skipped")
	case errors.Is(err, mealplan.ErrNoRecipe):
		writeError(w, http.StatusBadRequest, "meal has no recipe")
	default:
		h.logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func (h *MealPlanHandler) planChanged(plan *model.MealPlan, day, mealType string) {
	h.broadcast(websocket.EntityMealPlan, "updated", plan.ID, map[string]any{
		"week":     plan.WeekStartDate,
		"day":      day,
		"mealType": mealType,
	})
}

func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	plan, err := h.plans.LoadWeek(r.Context(), week)
	if err != nil {
		h.writePlanError(w, "load meal plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Stats(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	plan, err := h.plans.LoadWeek(r.Context(), week)
	if err != nil {
		h.writePlanError(w, "load meal plan", err)
		return
	}
	writeJSON(w, http.StatusOK, mealplan.CountByStatus(plan))
}

type assignRequest struct {
	RecipeID string `json:"recipeId"`
	Notes    string `json:"notes"`
}

func (h *MealPlanHandler) Assign(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	day, mealType := r.PathValue("day"), r.PathValue("meal_type")
	if err := mealplan.ValidateSlot(day, mealType); err != nil {
		h.writePlanError(w, "assign meal", err)
		return
	}

	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.RecipeID = strings.TrimSpace(req.RecipeID)
	if req.RecipeID == "" {
		writeError(w, http.StatusBadRequest, "recipeId is required")
		return
	}

	rec, err := h.catalog.Get(req.RecipeID)
	if err != nil {
		h.logger.Error("get recipe", "id", req.RecipeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	plan, err := h.plans.AssignRecipe(r.Context(), week, day, mealType, *rec, req.Notes)
	if err != nil {
		h.writePlanError(w, "assign meal", err)
		return
	}

	h.planChanged(plan, day, mealType)
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Remove(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	day, mealType := r.PathValue("day"), r.PathValue("meal_type")

	plan, err := h.plans.RemoveMeal(r.Context(), week, day, mealType)
	if err != nil {
		h.writePlanError(w, "remove meal", err)
		return
	}

	h.planChanged(plan, day, mealType)
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}
	day, mealType := r.PathValue("day"), r.PathValue("meal_type")

	var req struct {
		Status model.MealState `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	plan, err := h.plans.SetStatus(r.Context(), week, day, mealType, req.Status)
	if err != nil {
		h.writePlanError(w, "set meal status", err)
		return
	}

	h.planChanged(plan, day, mealType)
	writeJSON(w, http.StatusOK, plan)
}

type generateRequest struct {
	Preferences planner.Preferences `json:"preferences"`
	APIKey      string              `json:"apiKey"`
}

// Generate asks the planner for a week of meals and writes the suggested
// slots over the stored plan.
func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	week, ok := h.week(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	recipes, fallback := h.catalog.All()
	if fallback {
		w.Header().Set(FallbackHeader, "sample")
	}
	if len(recipes) == 0 {
		writeError(w, http.StatusBadRequest, "add some recipes before generating a plan")
		return
	}

	suggestion, err := h.planner.Generate(r.Context(), req.Preferences, recipes, req.APIKey)
	if err != nil {
		h.writeGenerateError(w, err)
		return
	}

	plan, err := h.plans.Apply(r.Context(), week, suggestion)
	if err != nil {
		h.writePlanError(w, "apply generated plan", err)
		return
	}

	h.broadcast(websocket.EntityMealPlan, "generated", plan.ID, map[string]any{"week": plan.WeekStartDate})
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) writeGenerateError(w http.ResponseWriter, err error) {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, planner.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNoJSON), errors.Is(err, planner.ErrUnparseable):
		writeError(w, http.StatusBadGateway, "Failed to parse AI meal plan response")
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Message)
	default:
		h.logger.Error("generate meal plan", "provider", h.planner.Provider(), "error", err)
		writeError(w, http.StatusBadGateway, "meal plan provider unavailable")
	}
}
