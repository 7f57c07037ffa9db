package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/google/uuid"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var difficulty string
	var ingredients, instructions, tags string
	var nutrition sql.NullString

	err := scanner.Scan(
		&r.ID, &r.Name, &r.Description, &r.ImageURL, &r.PrepTime, &r.CookTime,
		&r.Servings, &difficulty, &ingredients, &instructions, &nutrition, &tags,
		&r.SourceURL, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Difficulty = model.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if nutrition.Valid && nutrition.String != "" {
		r.Nutrition = &model.Nutrition{}
		if err := json.Unmarshal([]byte(nutrition.String), r.Nutrition); err != nil {
			return nil, fmt.Errorf("decode nutrition: %w", err)
		}
	}
	return &r, nil
}

const recipeCols = `id, name, description, image_url, prep_time, cook_time, servings, difficulty, ingredients, instructions, nutrition, tags, source_url, created_at, updated_at`

// recipeArgs encodes the JSON columns in recipeCols order, minus id and timestamps.
func recipeArgs(r *model.Recipe) ([]any, error) {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}
	instructions := r.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	ingJSON, err := json.Marshal(ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}
	insJSON, err := json.Marshal(instructions)
	if err != nil {
		return nil, fmt.Errorf("encode instructions: %w", err)
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	var nutrition sql.NullString
	if r.Nutrition != nil {
		b, err := json.Marshal(r.Nutrition)
		if err != nil {
			return nil, fmt.Errorf("encode nutrition: %w", err)
		}
		nutrition = sql.NullString{String: string(b), Valid: true}
	}

	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}

	return []any{
		r.Name, r.Description, r.ImageURL, r.PrepTime, r.CookTime, r.Servings,
		string(difficulty), string(ingJSON), string(insJSON), nutrition, string(tagJSON), r.SourceURL,
	}, nil
}

func (s *RecipeStore) GetByID(id string) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) List() ([]model.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeCols + ` FROM recipes ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return count, nil
}

// Create inserts r, assigning an id when r.ID is empty.
func (s *RecipeStore) Create(r model.Recipe) (*model.Recipe, error) {
	if err := insertRecipe(s.db, &r); err != nil {
		return nil, err
	}
	return s.GetByID(r.ID)
}

// CreateMany inserts all recipes in one transaction, keeping their ids.
func (s *RecipeStore) CreateMany(recipes []model.Recipe) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range recipes {
		if err := insertRecipe(tx, &recipes[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRecipe(db execer, r *model.Recipe) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	args, err := recipeArgs(r)
	if err != nil {
		return err
	}
	args = append([]any{r.ID}, args...)
	args = append(args, r.CreatedAt, r.UpdatedAt)

	_, err = db.Exec(`INSERT INTO recipes (`+recipeCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) Update(r model.Recipe) (*model.Recipe, error) {
	args, err := recipeArgs(&r)
	if err != nil {
		return nil, err
	}
	args = append(args, time.Now().UTC(), r.ID)

	_, err = s.db.Exec(
		`UPDATE recipes SET name = ?, description = ?, image_url = ?, prep_time = ?, cook_time = ?, servings = ?,
		difficulty = ?, ingredients = ?, instructions = ?, nutrition = ?, tags = ?, source_url = ?, updated_at = ?
		WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RecipeStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
