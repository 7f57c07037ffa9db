package model

import (
	"bytes"
	"encoding/json"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ImageURL     string       `json:"imageUrl"`
	PrepTime     int          `json:"prepTime"`
	CookTime     int          `json:"cookTime"`
	Servings     int          `json:"servings"`
	Difficulty   Difficulty   `json:"difficulty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    *Nutrition   `json:"nutrition"`
	Tags         []string     `json:"tags"`
	SourceURL    string       `json:"sourceUrl,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// TotalTime is prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Ref returns the denormalized snapshot stored in meal slots.
func (r Recipe) Ref() *RecipeRef {
	return &RecipeRef{ID: r.ID, Name: r.Name, ImageURL: r.ImageURL}
}

// RecipeRef is a point-in-time copy of the recipe fields a meal slot displays.
// It is not kept in sync with later recipe edits.
type RecipeRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Ingredient is either structured (Name set) or freeform (Raw set, e.g. "2 cups flour").
// Entries that are neither decode to the zero value and are ignored by consumers.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
	Raw      string  `json:"-"`
}

// IsZero reports whether the entry carries nothing usable.
func (i Ingredient) IsZero() bool {
	return i.Name == "" && i.Raw == ""
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	if i.Name == "" && i.Raw != "" {
		return json.Marshal(i.Raw)
	}
	type plain Ingredient
	return json.Marshal(plain(i))
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	*i = Ingredient{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		i.Raw = s
	case '{':
		// Loose decode so one bad field doesn't sink the whole recipe.
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if name, ok := obj["name"].(string); ok {
			i.Name = name
		}
		if amount, ok := obj["amount"].(float64); ok {
			i.Amount = amount
		}
		if unit, ok := obj["unit"].(string); ok {
			i.Unit = unit
		}
		if category, ok := obj["category"].(string); ok {
			i.Category = category
		}
	}
	return nil
}
