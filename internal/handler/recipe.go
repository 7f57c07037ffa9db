package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/recipe"
	"github.com/dukerupert/plateful/internal/store"
	"github.com/dukerupert/plateful/internal/websocket"
)

// FallbackHeader marks responses served from the bundled sample recipes.
const FallbackHeader = "X-Plateful-Fallback"

type RecipeHandler struct {
	notifier
	catalog  *recipe.Catalog
	store    *store.RecipeStore
	importer *recipe.Importer
	logger   *slog.Logger
}

// recipeView adds display-ready timing to a recipe response.
type recipeView struct {
	*model.Recipe
	TotalMinutes   int    `json:"totalTime"`
	TotalTimeLabel string `json:"totalTimeLabel"`
}

func viewOf(r *model.Recipe) recipeView {
	total := r.TotalTime()
	return recipeView{Recipe: r, TotalMinutes: total, TotalTimeLabel: recipe.FormatTime(total)}
}

func viewsOf(recipes []model.Recipe) []recipeView {
	out := make([]recipeView, len(recipes))
	for i := range recipes {
		out[i] = viewOf(&recipes[i])
	}
	return out
}

func NewRecipeHandler(catalog *recipe.Catalog, rs *store.RecipeStore, importer *recipe.Importer, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{notifier: notifier{hub}, catalog: catalog, store: rs, importer: importer, logger: logger}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := recipe.Query{
		Text: r.URL.Query().Get("q"),
		Sort: recipe.SortKey(r.URL.Query().Get("sort")),
	}
	if q.Sort != "" && !q.Sort.Valid() {
		writeError(w, http.StatusBadRequest, "sort must be name, prepTime, cookTime, or createdAt")
		return
	}
	for _, tag := range strings.Split(r.URL.Query().Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			q.Tags = append(q.Tags, tag)
		}
	}

	recipes, fallback := h.catalog.All()
	if fallback {
		w.Header().Set(FallbackHeader, "sample")
	}
	writeJSON(w, http.StatusOK, viewsOf(recipe.Search(recipes, q)))
}

// Tags lists every tag in the catalog for the filter chips.
func (h *RecipeHandler) Tags(w http.ResponseWriter, r *http.Request) {
	recipes, fallback := h.catalog.All()
	if fallback {
		w.Header().Set(FallbackHeader, "sample")
	}
	writeJSON(w, http.StatusOK, recipe.Tags(recipes))
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get recipe", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(rec))
}

// validateRecipe trims and checks a recipe from a request body.
func validateRecipe(rec *model.Recipe) string {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return "name is required"
	}
	if rec.Difficulty == "" {
		rec.Difficulty = model.DifficultyMedium
	}
	if !rec.Difficulty.Valid() {
		return "difficulty must be easy, medium, or hard"
	}
	if rec.PrepTime < 0 || rec.CookTime < 0 || rec.Servings < 0 {
		return "times and servings must not be negative"
	}

	ingredients := rec.Ingredients[:0]
	for _, ing := range rec.Ingredients {
		if !ing.IsZero() {
			ingredients = append(ingredients, ing)
		}
	}
	rec.Ingredients = ingredients
	return ""
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Recipe
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateRecipe(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	req.ID = ""

	rec, err := h.store.Create(req)
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.broadcast(websocket.EntityRecipe, "created", rec.ID, nil)
	writeJSON(w, http.StatusCreated, viewOf(rec))
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var req model.Recipe
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateRecipe(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	req.ID = id

	rec, err := h.store.Update(req)
	if err != nil {
		h.logger.Error("update recipe", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	h.broadcast(websocket.EntityRecipe, "updated", id, nil)
	writeJSON(w, http.StatusOK, viewOf(rec))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete recipe", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.broadcast(websocket.EntityRecipe, "deleted", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "url must be an http or https address")
		return
	}

	imported, err := h.importer.Import(r.Context(), u.String())
	if errors.Is(err, recipe.ErrNoRecipeFound) {
		writeError(w, http.StatusUnprocessableEntity, "no recipe found at that address")
		return
	}
	if err != nil {
		h.logger.Warn("import recipe", "url", u.String(), "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch recipe page")
		return
	}
	if msg := validateRecipe(imported); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rec, err := h.store.Create(*imported)
	if err != nil {
		h.logger.Error("create imported recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}

	h.logger.Info("recipe imported", "id", rec.ID, "url", u.String())
	h.broadcast(websocket.EntityRecipe, "created", rec.ID, nil)
	writeJSON(w, http.StatusCreated, viewOf(rec))
}
