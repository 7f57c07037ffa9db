package recipe

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/store"
)

// Catalog reads recipes from the store and falls back to the bundled
// samples when the store cannot be read.
type Catalog struct {
	store  *store.RecipeStore
	logger *slog.Logger
}

func NewCatalog(rs *store.RecipeStore, logger *slog.Logger) *Catalog {
	return &Catalog{store: rs, logger: logger}
}

// Seed inserts the sample recipes when the store is empty and reports how
// many were added.
func (c *Catalog) Seed() (int, error) {
	count, err := c.store.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	samples := Samples()
	if err := c.store.CreateMany(samples); err != nil {
		return 0, fmt.Errorf("seed sample recipes: %w", err)
	}
	c.logger.Info("seeded sample recipes", "count", len(samples))
	return len(samples), nil
}

// All returns every recipe. When the store fails it logs a warning and
// returns the samples with fallback set.
func (c *Catalog) All() (recipes []model.Recipe, fallback bool) {
	recipes, err := c.store.List()
	if err != nil {
		c.logger.Warn("recipe store unavailable, serving samples", "error", err)
		return Samples(), true
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, false
}

// Get returns one recipe, or nil when it does not exist.
func (c *Catalog) Get(id string) (*model.Recipe, error) {
	return c.store.GetByID(id)
}
