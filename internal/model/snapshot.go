package model

import "time"

const SnapshotVersion = 1

// Snapshot is a full export of every collection.
type Snapshot struct {
	Version      int           `json:"version"`
	ExportedAt   time.Time     `json:"exportedAt"`
	Recipes      []Recipe      `json:"recipes"`
	MealPlans    []MealPlan    `json:"mealPlans"`
	GroceryLists []GroceryList `json:"groceryLists"`
}
