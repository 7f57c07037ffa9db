package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

var (
	ErrNoJSON      = errors.New("no JSON found in AI response")
	ErrUnparseable = errors.New("failed to parse AI meal plan response")
)

// EatOut marks a slot the model wants eaten out.
const EatOut = "EAT_OUT"

// Suggestion maps day → meal type → meal for the days the model answered.
type Suggestion map[string]map[string]model.Meal

// ParseResponse pulls the outermost JSON object out of text and turns it into
// meals. Unknown recipe ids leave the slot empty; days absent from the
// response are absent from the result.
func ParseResponse(text string, recipes []model.Recipe) (Suggestion, error) {
	return parseResponse(text, recipes, time.Now())
}

func parseResponse(text string, recipes []model.Recipe, now time.Time) (Suggestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	byID := make(map[string]model.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	out := make(Suggestion)
	for _, day := range planDays {
		v, ok := raw[day]
		if !ok || v == nil {
			continue
		}
		slots, _ := v.(map[string]any)
		meals := make(map[string]model.Meal, len(planMealTypes))
		for _, mt := range planMealTypes {
			meals[mt] = slotMeal(slots[mt], byID, now)
		}
		out[day] = meals
	}
	return out, nil
}

func slotMeal(v any, byID map[string]model.Recipe, now time.Time) model.Meal {
	id, ok := v.(string)
	if !ok || id == "" {
		return model.EmptyMeal()
	}
	if id == EatOut {
		m := model.EatenOutMeal("Eat out")
		m.PlannedAt = &now
		m.CompletedAt = &now
		return m
	}
	if r, ok := byID[id]; ok {
		return model.PlannedMeal(r.Ref(), now)
	}
	return model.EmptyMeal()
}
