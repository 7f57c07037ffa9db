package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/plateful/internal/grocery"
	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/recipe"
	"github.com/dukerupert/plateful/internal/store"
	"github.com/dukerupert/plateful/internal/websocket"
)

type GroceryHandler struct {
	notifier
	groceryStore *store.GroceryStore
	plans        *mealplan.Service
	catalog      *recipe.Catalog
	baseURL      string
	now          func() time.Time
	logger       *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, plans *mealplan.Service, catalog *recipe.Catalog, baseURL string, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{
		notifier:     notifier{hub},
		groceryStore: gs,
		plans:        plans,
		catalog:      catalog,
		baseURL:      baseURL,
		now:          time.Now,
		logger:       logger,
	}
}

// listView is a list with its derived shopping views.
type listView struct {
	*model.GroceryList
	Grouped          []grocery.CategoryGroup `json:"grouped"`
	Stats            grocery.Stats           `json:"stats"`
	CategoryProgress []grocery.CategoryCount `json:"categoryProgress"`
	ShareURL         string                  `json:"shareUrl"`
}

func (h *GroceryHandler) view(l *model.GroceryList) listView {
	return listView{
		GroceryList:      l,
		Grouped:          grocery.GroupByCategory(l.Items),
		Stats:            grocery.ComputeStats(l.Items),
		CategoryProgress: grocery.CategoryProgress(l.Items),
		ShareURL:         grocery.ShareURL(h.baseURL, l.ID),
	}
}

// list loads the {list_id} list, writing 404 or 500 and returning nil when
// it cannot.
func (h *GroceryHandler) list(w http.ResponseWriter, r *http.Request) *model.GroceryList {
	id := r.PathValue("list_id")
	l, err := h.groceryStore.GetList(id)
	if err != nil {
		h.logger.Error("get grocery list", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return nil
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return nil
	}
	return l
}

// item loads the {id} item of the {list_id} list.
func (h *GroceryHandler) item(w http.ResponseWriter, r *http.Request) *model.GroceryItem {
	id := r.PathValue("id")
	item, err := h.groceryStore.GetItemByID(id)
	if err != nil {
		h.logger.Error("get grocery item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil || item.ListID != r.PathValue("list_id") {
		writeError(w, http.StatusNotFound, "item not found")
		return nil
	}
	return item
}

func (h *GroceryHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.groceryStore.ListLists()
	if err != nil {
		h.logger.Error("list grocery lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list grocery lists")
		return
	}

	type summary struct {
		model.GroceryList
		Stats grocery.Stats `json:"stats"`
	}
	out := make([]summary, len(lists))
	for i, l := range lists {
		out[i] = summary{GroceryList: l, Stats: grocery.ComputeStats(l.Items)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *GroceryHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	l, err := h.groceryStore.CreateList(req.Name)
	if err != nil {
		h.logger.Error("create grocery list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.broadcast(websocket.EntityGroceryList, "created", l.ID, nil)
	writeJSON(w, http.StatusCreated, h.view(l))
}

// Generate builds a new list from a week's meal plan.
func (h *GroceryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Week string `json:"week"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	week, err := mealplan.ParseWeek(req.Week, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
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

	items := grocery.Generate(plan, recipes)
	l, err := h.groceryStore.CreateListWithItems(model.DefaultGroceryListName, items)
	if err != nil {
		h.logger.Error("create generated list", "week", week, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.logger.Info("grocery list generated", "week", week, "id", l.ID, "items", len(l.Items))
	h.broadcast(websocket.EntityGroceryList, "created", l.ID, map[string]any{"week": week})
	writeJSON(w, http.StatusCreated, h.view(l))
}

func (h *GroceryHandler) GetList(w http.ResponseWriter, r *http.Request) {
	l := h.list(w, r)
	if l == nil {
		return
	}
	writeJSON(w, http.StatusOK, h.view(l))
}

func (h *GroceryHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	l := h.list(w, r)
	if l == nil {
		return
	}
	if err := h.groceryStore.DeleteList(l.ID); err != nil {
		h.logger.Error("delete grocery list", "id", l.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}

	h.broadcast(websocket.EntityGroceryList, "deleted", l.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// QR renders the list's share URL as a PNG.
func (h *GroceryHandler) QR(w http.ResponseWriter, r *http.Request) {
	l := h.list(w, r)
	if l == nil {
		return
	}
	png, err := grocery.ShareQR(h.baseURL, l.ID)
	if err != nil {
		h.logger.Error("render share qr", "id", l.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}

type groceryItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes"`
	Category string  `json:"category"`
}

// validate trims the request and fills in the category when it is blank.
func (req *groceryItemRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Quantity < 0 {
		return "quantity must not be negative"
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Category == "" {
		req.Category = string(grocery.Categorize(req.Name))
	}
	if !grocery.Category(req.Category).Valid() {
		return "unknown category"
	}
	return ""
}

func (h *GroceryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	l := h.list(w, r)
	if l == nil {
		return
	}

	var req groceryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.groceryStore.CreateItem(l.ID, model.GroceryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Notes:    req.Notes,
		Category: req.Category,
		Source:   model.SourceManual,
	})
	if err != nil {
		h.logger.Error("create grocery item", "list_id", l.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.broadcast(websocket.EntityGroceryItem, "created", item.ID, map[string]any{"listId": l.ID})
	writeJSON(w, http.StatusCreated, item)
}

func (h *GroceryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	existing := h.item(w, r)
	if existing == nil {
		return
	}

	var req groceryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.groceryStore.UpdateItem(existing.ID, req.Name, req.Quantity, req.Unit, req.Notes, req.Category)
	if err != nil {
		h.logger.Error("update grocery item", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.broadcast(websocket.EntityGroceryItem, "updated", item.ID, map[string]any{"listId": item.ListID})
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	existing := h.item(w, r)
	if existing == nil {
		return
	}
	if err := h.groceryStore.DeleteItem(existing.ID); err != nil {
		h.logger.Error("delete grocery item", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.broadcast(websocket.EntityGroceryItem, "deleted", existing.ID, map[string]any{"listId": existing.ListID})
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroceryHandler) TogglePurchased(w http.ResponseWriter, r *http.Request) {
	existing := h.item(w, r)
	if existing == nil {
		return
	}

	item, err := h.groceryStore.TogglePurchased(existing.ID)
	if err != nil {
		h.logger.Error("toggle grocery item", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.broadcast(websocket.EntityGroceryItem, "updated", item.ID, map[string]any{"listId": item.ListID, "purchased": item.Purchased})
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	l := h.list(w, r)
	if l == nil {
		return
	}

	count, err := h.groceryStore.ClearPurchased(l.ID)
	if err != nil {
		h.logger.Error("clear purchased", "list_id", l.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear purchased items")
		return
	}

	if count > 0 {
		h.broadcast(websocket.EntityGroceryList, "cleared", l.ID, map[string]any{"count": count})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}
