package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

// SnapshotStore reads and replaces the whole database as one document.
type SnapshotStore struct {
	db        *sql.DB
	recipes   *RecipeStore
	plans     *MealPlanStore
	groceries *GroceryStore
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{
		db:        db,
		recipes:   NewRecipeStore(db),
		plans:     NewMealPlanStore(db),
		groceries: NewGroceryStore(db),
	}
}

func (s *SnapshotStore) Export() (*model.Snapshot, error) {
	recipes, err := s.recipes.List()
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.List()
	if err != nil {
		return nil, err
	}
	lists, err := s.groceries.ListLists()
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		Version:      model.SnapshotVersion,
		ExportedAt:   time.Now().UTC(),
		Recipes:      recipes,
		MealPlans:    plans,
		GroceryLists: lists,
	}
	if snap.Recipes == nil {
		snap.Recipes = []model.Recipe{}
	}
	if snap.MealPlans == nil {
		snap.MealPlans = []model.MealPlan{}
	}
	if snap.GroceryLists == nil {
		snap.GroceryLists = []model.GroceryList{}
	}
	return snap, nil
}

// Import replaces every collection with the snapshot contents in one transaction.
func (s *SnapshotStore) Import(snap *model.Snapshot) error {
	if snap.Version > model.SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, model.SnapshotVersion)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meals", "meal_plans", "grocery_items", "grocery_lists", "recipes"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range snap.Recipes {
		if err := insertRecipe(tx, &snap.Recipes[i]); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for _, p := range snap.MealPlans {
		if _, err := tx.Exec(
			`INSERT INTO meal_plans (`+planCols+`) VALUES (?, ?, ?, ?)`,
			p.ID, p.WeekStartDate, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert meal plan %s: %w", p.WeekStartDate, err)
		}
		for day, slots := range p.Meals {
			for mealType, m := range slots {
				if err := saveMealTx(tx, p.ID, day, mealType, m, now); err != nil {
					return err
				}
			}
		}
	}

	for _, l := range snap.GroceryLists {
		if _, err := tx.Exec(
			`INSERT INTO grocery_lists (`+listCols+`) VALUES (?, ?, ?, ?)`,
			l.ID, l.Name, l.CreatedAt, l.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert list %s: %w", l.ID, err)
		}
		for _, item := range l.Items {
			if err := insertItem(tx, l.ID, &item, now); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
