package mealplan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/dukerupert/plateful/internal/store"
	"golang.org/x/sync/singleflight"
)

// maxStreakWeeks bounds how far back a streak lookup walks.
const maxStreakWeeks = 52

// Service owns week plan loading and slot updates on top of the store.
// Concurrent loads of the same week share one fetch-or-create.
type Service struct {
	plans  *store.MealPlanStore
	group  singleflight.Group
	now    func() time.Time
	logger *slog.Logger
}

func NewService(plans *store.MealPlanStore, logger *slog.Logger) *Service {
	return &Service{plans: plans, now: time.Now, logger: logger}
}

// LoadWeek returns the plan for week, creating an empty one on first access.
// Each caller gets its own copy of the plan.
func (s *Service) LoadWeek(ctx context.Context, week string) (*model.MealPlan, error) {
	ch := s.group.DoChan(week, func() (any, error) {
		plan, created, err := s.plans.GetOrCreate(week)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Info("meal plan created", "week", week, "id", plan.ID)
		}
		return plan, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load week %s: %w", week, res.Err)
		}
		return res.Val.(*model.MealPlan).Clone(), nil
	}
}

// Lookup returns the stored plan for week without creating it.
func (s *Service) Lookup(week string) (*model.MealPlan, error) {
	return s.plans.GetByWeek(week)
}

func (s *Service) AssignRecipe(ctx context.Context, week, day, mealType string, recipe model.Recipe, notes string) (*model.MealPlan, error) {
	if err := ValidateSlot(day, mealType); err != nil {
		return nil, err
	}
	plan, err := s.LoadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	m, err := Assign(plan, day, mealType, recipe.Ref(), notes, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.plans.SaveMeal(plan.ID, day, mealType, m); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) RemoveMeal(ctx context.Context, week, day, mealType string) (*model.MealPlan, error) {
	if err := ValidateSlot(day, mealType); err != nil {
		return nil, err
	}
	plan, err := s.LoadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if err := Remove(plan, day, mealType); err != nil {
		return nil, err
	}
	if err := s.plans.SaveMeal(plan.ID, day, mealType, model.EmptyMeal()); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) SetStatus(ctx context.Context, week, day, mealType string, status model.MealState) (*model.MealPlan, error) {
	if err := ValidateSlot(day, mealType); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	plan, err := s.LoadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	m, err := SetStatus(plan, day, mealType, status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.plans.SaveMeal(plan.ID, day, mealType, m); err != nil {
		return nil, err
	}
	return plan, nil
}

// Apply overwrites the given slots of the week's plan in one transaction.
// Slots not present in meals are left as they are.
func (s *Service) Apply(ctx context.Context, week string, meals map[string]map[string]model.Meal) (*model.MealPlan, error) {
	for day, slots := range meals {
		for mt := range slots {
			if err := ValidateSlot(day, mt); err != nil {
				return nil, err
			}
		}
	}
	plan, err := s.LoadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]map[string]model.Meal, len(meals))
	for day, slots := range meals {
		changed[day] = make(map[string]model.Meal, len(slots))
		for mt, m := range slots {
			plan.SetMeal(day, mt, m)
			changed[day][mt] = plan.Meal(day, mt)
		}
	}
	if err := s.plans.SaveMeals(plan.ID, changed); err != nil {
		return nil, err
	}
	return plan, nil
}

// Streak computes the home-cooked streak ending today from stored plans.
func (s *Service) Streak(ctx context.Context) (int, error) {
	today := s.now()
	plans := make(map[string]*model.MealPlan)

	week := WeekKey(today)
	for i := range maxStreakWeeks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		plan, err := s.plans.GetByWeek(week)
		if err != nil {
			return 0, fmt.Errorf("streak week %s: %w", week, err)
		}
		if plan != nil {
			plans[week] = plan
		}
		// A streak cannot run past a Monday without a cooked meal. The
		// current week is exempt since today may be that Monday.
		if i > 0 && (plan == nil || !CookedOn(plan, model.Days[0])) {
			break
		}
		if week, err = PreviousWeek(week); err != nil {
			return 0, err
		}
	}

	return HomeCookedStreak(plans, today), nil
}

// Recent returns the stored plans of the n weeks ending at week, oldest
// first. Missing weeks are nil and are not created.
func (s *Service) Recent(week string, n int) ([]string, []*model.MealPlan, error) {
	keys := make([]string, n)
	plans := make([]*model.MealPlan, n)
	key := week
	for i := n - 1; i >= 0; i-- {
		plan, err := s.plans.GetByWeek(key)
		if err != nil {
			return nil, nil, fmt.Errorf("recent week %s: %w", key, err)
		}
		keys[i], plans[i] = key, plan
		if key, err = PreviousWeek(key); err != nil {
			return nil, nil, err
		}
	}
	return keys, plans, nil
}
