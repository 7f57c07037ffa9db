package model

import "time"

const DefaultGroceryListName = "Weekly Groceries"

const (
	SourceManual   = "manual"
	SourceMealPlan = "meal_plan"
	SourceRecipe   = "recipe"
)

type GroceryList struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Items     []GroceryItem `json:"items"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type GroceryItem struct {
	ID            string    `json:"id"`
	ListID        string    `json:"listId,omitempty"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	Purchased     bool      `json:"purchased"`
	Notes         string    `json:"notes"`
	Source        string    `json:"source"`
	SourceID      string    `json:"sourceId"`
	SourceRecipes []string  `json:"sourceRecipes"`
	SortOrder     int       `json:"sortOrder"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
