package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/google/uuid"
)

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

const planCols = `id, week_start_date, created_at, updated_at`

func scanPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var p model.MealPlan
	if err := scanner.Scan(&p.ID, &p.WeekStartDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

const mealCols = `day, meal_type, state, recipe_id, recipe_name, recipe_image_url, notes, planned_at, completed_at, updated_at`

func scanMeal(scanner interface{ Scan(...any) error }) (day, mealType string, m model.Meal, err error) {
	var state string
	var recipeID, recipeName, recipeImage sql.NullString
	var plannedAt, completedAt sql.NullTime
	var updatedAt time.Time

	err = scanner.Scan(&day, &mealType, &state, &recipeID, &recipeName, &recipeImage,
		&m.Notes, &plannedAt, &completedAt, &updatedAt)
	if err != nil {
		return "", "", model.Meal{}, err
	}

	m.State = model.MealState(state)
	if recipeID.Valid {
		m.Recipe = &model.RecipeRef{ID: recipeID.String, Name: recipeName.String, ImageURL: recipeImage.String}
	}
	if plannedAt.Valid {
		m.PlannedAt = &plannedAt.Time
	}
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	m.UpdatedAt = &updatedAt
	return day, mealType, m, nil
}

func (s *MealPlanStore) loadMeals(p *model.MealPlan) error {
	rows, err := s.db.Query(`SELECT `+mealCols+` FROM meals WHERE plan_id = ?`, p.ID)
	if err != nil {
		return fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		day, mealType, m, err := scanMeal(rows)
		if err != nil {
			return fmt.Errorf("scan meal: %w", err)
		}
		p.SetMeal(day, mealType, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	p.Fill()
	return nil
}

func (s *MealPlanStore) get(query string, arg any) (*model.MealPlan, error) {
	p, err := scanPlan(s.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}
	if err := s.loadMeals(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByWeek returns the plan whose week starts on weekStart ("YYYY-MM-DD"), or nil.
func (s *MealPlanStore) GetByWeek(weekStart string) (*model.MealPlan, error) {
	return s.get(`SELECT `+planCols+` FROM meal_plans WHERE week_start_date = ?`, weekStart)
}

func (s *MealPlanStore) GetByID(id string) (*model.MealPlan, error) {
	return s.get(`SELECT `+planCols+` FROM meal_plans WHERE id = ?`, id)
}

// GetOrCreate returns the plan for weekStart, inserting an empty one if none exists.
// Concurrent callers racing on the same week all end up with the same row.
func (s *MealPlanStore) GetOrCreate(weekStart string) (*model.MealPlan, bool, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO meal_plans (id, week_start_date, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(week_start_date) DO NOTHING`,
		uuid.NewString(), weekStart, now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert meal plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	p, err := s.GetByWeek(weekStart)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("meal plan for %s vanished after insert", weekStart)
	}
	return p, n > 0, nil
}

// List returns every stored plan with its meals, oldest week first.
func (s *MealPlanStore) List() ([]model.MealPlan, error) {
	rows, err := s.db.Query(`SELECT ` + planCols + ` FROM meal_plans ORDER BY week_start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}

	var plans []model.MealPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Meals are loaded after the cursor closes; in-memory databases have a single connection.
	for i := range plans {
		if err := s.loadMeals(&plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// SaveMeal writes one slot. Empty meals delete the slot's row.
func (s *MealPlanStore) SaveMeal(planID, day, mealType string, m model.Meal) error {
	return s.SaveMeals(planID, map[string]map[string]model.Meal{day: {mealType: m}})
}

// SaveMeals writes several slots in one transaction.
func (s *MealPlanStore) SaveMeals(planID string, meals map[string]map[string]model.Meal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for day, slots := range meals {
		for mealType, m := range slots {
			if err := saveMealTx(tx, planID, day, mealType, m, now); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(`UPDATE meal_plans SET updated_at = ? WHERE id = ?`, now, planID); err != nil {
		return fmt.Errorf("touch meal plan: %w", err)
	}
	return tx.Commit()
}

func saveMealTx(tx *sql.Tx, planID, day, mealType string, m model.Meal, now time.Time) error {
	if m.IsEmpty() {
		if _, err := tx.Exec(`DELETE FROM meals WHERE plan_id = ? AND day = ? AND meal_type = ?`, planID, day, mealType); err != nil {
			return fmt.Errorf("clear meal: %w", err)
		}
		return nil
	}
	if !m.Valid() {
		return fmt.Errorf("save meal %s/%s: state %q does not match recipe", day, mealType, m.State)
	}

	var recipeID, recipeName, recipeImage sql.NullString
	if m.Recipe != nil {
		recipeID = sql.NullString{String: m.Recipe.ID, Valid: true}
		recipeName = sql.NullString{String: m.Recipe.Name, Valid: true}
		recipeImage = sql.NullString{String: m.Recipe.ImageURL, Valid: true}
	}
	var plannedAt, completedAt sql.NullTime
	if m.PlannedAt != nil {
		plannedAt = sql.NullTime{Time: m.PlannedAt.UTC(), Valid: true}
	}
	if m.CompletedAt != nil {
		completedAt = sql.NullTime{Time: m.CompletedAt.UTC(), Valid: true}
	}

	_, err := tx.Exec(
		`INSERT INTO meals (plan_id, day, meal_type, state, recipe_id, recipe_name, recipe_image_url, notes, planned_at, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id, day, meal_type) DO UPDATE SET
			state = excluded.state, recipe_id = excluded.recipe_id, recipe_name = excluded.recipe_name,
			recipe_image_url = excluded.recipe_image_url, notes = excluded.notes, planned_at = excluded.planned_at,
			completed_at = excluded.completed_at, updated_at = excluded.updated_at`,
		planID, day, mealType, string(m.State), recipeID, recipeName, recipeImage, m.Notes, plannedAt, completedAt, now,
	)
	if err != nil {
		return fmt.Errorf("save meal %s/%s: %w", day, mealType, err)
	}
	return nil
}
