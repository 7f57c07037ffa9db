package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukerupert/plateful/internal/backup"
	"github.com/dukerupert/plateful/internal/handler"
	"github.com/dukerupert/plateful/internal/mealplan"
	"github.com/dukerupert/plateful/internal/middleware"
	"github.com/dukerupert/plateful/internal/planner"
	"github.com/dukerupert/plateful/internal/recipe"
	"github.com/dukerupert/plateful/internal/store"
	ws "github.com/dukerupert/plateful/internal/websocket"
)

// Options configures the pieces of the server that do not come from the
// database.
type Options struct {
	BaseURL        string
	WebDir         string
	AllowedOrigins []string
	Planner        planner.Config
	Backup         backup.Config
	SeedSamples    bool
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	recipeH       *handler.RecipeHandler
	mealPlanH     *handler.MealPlanHandler
	groceryH      *handler.GroceryHandler
	insightsH     *handler.InsightsHandler
	backupH       *handler.BackupHandler
	meta          http.HandlerFunc
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	opts          Options
	logger        *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	recipeStore := store.NewRecipeStore(db)
	groceryStore := store.NewGroceryStore(db)

	catalog := recipe.NewCatalog(recipeStore, logger.With("component", "catalog"))
	if opts.SeedSamples {
		if _, err := catalog.Seed(); err != nil {
			logger.Warn("seed sample recipes", "error", err)
		}
	}
	plans := mealplan.NewService(store.NewMealPlanStore(db), logger.With("component", "meal_plan"))
	p := planner.New(opts.Planner, nil, logger.With("component", "planner"))

	backupMgr := backup.NewManager(opts.Backup, store.NewSnapshotStore(db), store.NewBackupStore(db), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: ws.EntityBackup,
			Action: string(s.State),
			Extra: map[string]any{
				"inProgress": s.InProgress,
				"error":      s.Error,
			},
		})
	}, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		recipeH:       handler.NewRecipeHandler(catalog, recipeStore, recipe.NewImporter(nil), hub, logger.With("component", "recipe")),
		mealPlanH:     handler.NewMealPlanHandler(plans, catalog, p, hub, logger.With("component", "meal_plan")),
		groceryH:      handler.NewGroceryHandler(groceryStore, plans, catalog, opts.BaseURL, hub, logger.With("component", "grocery")),
		insightsH:     handler.NewInsightsHandler(plans, catalog, logger.With("component", "insights")),
		backupH:       handler.NewBackupHandler(backupMgr, hub, logger.With("component", "backup")),
		meta:          handler.Meta(p.Provider()),
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		opts:          opts,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Hub returns the websocket hub so it can be closed on shutdown.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/meta", s.meta)

	// Recipes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("POST /api/recipes/import", s.rateLimitedHandler(s.recipeH.Import))
	mux.HandleFunc("GET /api/recipes/tags", s.recipeH.Tags)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)

	// Meal plans
	mux.HandleFunc("GET /api/meal-plans/{week}", s.mealPlanH.Get)
	mux.HandleFunc("GET /api/meal-plans/{week}/stats", s.mealPlanH.Stats)
	mux.HandleFunc("PUT /api/meal-plans/{week}/meals/{day}/{meal_type}", s.mealPlanH.Assign)
	mux.HandleFunc("DELETE /api/meal-plans/{week}/meals/{day}/{meal_type}", s.mealPlanH.Remove)
	mux.HandleFunc("PUT /api/meal-plans/{week}/meals/{day}/{meal_type}/status", s.mealPlanH.SetStatus)
	mux.HandleFunc("POST /api/meal-plans/{week}/generate", s.rateLimitedHandler(s.mealPlanH.Generate))

	// Grocery lists
	mux.HandleFunc("GET /api/grocery-lists", s.groceryH.ListLists)
	mux.HandleFunc("POST /api/grocery-lists", s.groceryH.CreateList)
	mux.HandleFunc("POST /api/grocery-lists/generate", s.groceryH.Generate)
	mux.HandleFunc("GET /api/grocery-lists/{list_id}", s.groceryH.GetList)
	mux.HandleFunc("DELETE /api/grocery-lists/{list_id}", s.groceryH.DeleteList)
	mux.HandleFunc("GET /api/grocery-lists/{list_id}/qr.png", s.groceryH.QR)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/items", s.groceryH.CreateItem)
	mux.HandleFunc("PUT /api/grocery-lists/{list_id}/items/{id}", s.groceryH.UpdateItem)
	mux.HandleFunc("DELETE /api/grocery-lists/{list_id}/items/{id}", s.groceryH.DeleteItem)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/items/{id}/purchase", s.groceryH.TogglePurchased)
	mux.HandleFunc("POST /api/grocery-lists/{list_id}/clear-purchased", s.groceryH.ClearPurchased)

	// Insights
	mux.HandleFunc("GET /api/insights/nutrition", s.insightsH.Nutrition)
	mux.HandleFunc("GET /api/insights/meals", s.insightsH.Meals)
	mux.HandleFunc("GET /api/insights/streak", s.insightsH.Streak)

	// Backup
	mux.HandleFunc("POST /api/backup/export", s.rateLimitedHandler(s.backupH.Export))
	mux.HandleFunc("POST /api/backup/import", s.rateLimitedHandler(s.backupH.Import))
	mux.HandleFunc("POST /api/backup/run", s.backupH.Run)
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)

	// WebSocket
	origins := s.allowedOrigins()
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, middleware.OriginHosts(origins), s.logger.With("component", "websocket")))

	mux.Handle("GET /", s.spaHandler())

	var h http.Handler = mux
	if len(origins) > 0 {
		h = middleware.CORS(origins)(h)
	}
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

// allowedOrigins is the configured list, or the origin of BaseURL. Empty
// means same-origin only.
func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) > 0 {
		return s.opts.AllowedOrigins
	}
	if o := middleware.Origin(s.opts.BaseURL); o != "" {
		return []string{o}
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// spaHandler serves files from the web directory, answering unknown
// non-API paths with index.html so client-side routes survive a reload.
func (s *Server) spaHandler() http.Handler {
	dir := s.opts.WebDir
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		if dir == "" {
			http.NotFound(w, r)
			return
		}

		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err != nil || info.IsDir() && r.URL.Path != "/" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
