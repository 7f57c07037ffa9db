package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Frequency is the eat-out count per week. The UI sends it as a string from
// a select box, older clients as a number; both decode.
type Frequency string

func (f *Frequency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Frequency(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("eatOutFrequency must be a string or number: %w", err)
	}
	*f = Frequency(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

// Count is the leading integer of f, or 0 when there is none.
func (f Frequency) Count() int {
	m := leadingInt.FindString(string(f))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0
	}
	return n
}

// Preferences are the answers from the planning dialog.
type Preferences struct {
	DietaryRestrictions []string  `json:"dietaryRestrictions"`
	EatOutFrequency     Frequency `json:"eatOutFrequency"`
	PreferredCuisines   []string  `json:"preferredCuisines"`
	MealComplexity      string    `json:"mealComplexity"`
	SpecialRequests     string    `json:"specialRequests"`
}

// WithDefaults fills an unset frequency ("2") and complexity (medium).
func (p Preferences) WithDefaults() Preferences {
	if strings.TrimSpace(string(p.EatOutFrequency)) == "" {
		p.EatOutFrequency = "2"
	}
	switch p.MealComplexity {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
	default:
		p.MealComplexity = ComplexityMedium
	}
	return p
}

// Options the planning dialog offers.
var (
	DietaryOptions = []string{"vegetarian", "vegan", "gluten-free", "dairy-free", "low-carb", "keto", "paleo"}
	CuisineOptions = []string{"italian", "mexican", "asian", "mediterranean", "american", "indian", "french", "thai"}
)
