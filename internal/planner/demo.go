package planner

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/dukerupert/plateful/internal/model"
)

// DemoGenerator builds a plan locally, in the same JSON shape a model
// returns, without any network calls.
type DemoGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoGenerator uses rng to place eat-out slots. A nil rng is seeded
// randomly.
func NewDemoGenerator(rng *rand.Rand) *DemoGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DemoGenerator{rng: rng}
}

// Generate returns the plan as a JSON object of day → meal type → recipe id
// or EAT_OUT.
func (g *DemoGenerator) Generate(prefs Preferences, recipes []model.Recipe) (string, error) {
	prefs = prefs.WithDefaults()
	pool := filterRecipes(prefs, recipes)

	total := len(planDays) * len(planMealTypes)
	n := min(max(prefs.EatOutFrequency.Count(), 0), total)
	eatOut := g.eatOutSlots(n, total)

	plan := make(map[string]map[string]string, len(planDays))
	next := 0
	for d, day := range planDays {
		plan[day] = make(map[string]string, len(planMealTypes))
		for m, mt := range planMealTypes {
			slot := d*len(planMealTypes) + m
			switch {
			case eatOut[slot]:
				plan[day][mt] = EatOut
			case len(pool) > 0:
				plan[day][mt] = pool[next%len(pool)].ID
				next++
			}
		}
	}

	b, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// eatOutSlots splits total slots into n equal strata and picks one slot in
// each, so exactly n slots are chosen and they spread across the week.
func (g *DemoGenerator) eatOutSlots(n, total int) map[int]bool {
	picked := make(map[int]bool, n)
	if n == 0 {
		return picked
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range n {
		lo := i * total / n
		hi := (i + 1) * total / n
		picked[lo+g.rng.IntN(hi-lo)] = true
	}
	return picked
}

func filterRecipes(prefs Preferences, recipes []model.Recipe) []model.Recipe {
	pool := recipes
	for _, r := range prefs.DietaryRestrictions {
		switch strings.ToLower(r) {
		case "vegetarian":
			pool = keep(pool, "vegetarian", "vegan")
		case "vegan":
			pool = keep(pool, "vegan")
		case "gluten-free":
			pool = keep(pool, "gluten-free")
		}
	}
	if len(prefs.PreferredCuisines) > 0 {
		pool = keep(pool, prefs.PreferredCuisines...)
	}
	if len(pool) == 0 {
		return recipes
	}
	return pool
}

// keep returns the recipes carrying any of tags.
func keep(recipes []model.Recipe, tags ...string) []model.Recipe {
	var out []model.Recipe
	for _, r := range recipes {
		if hasAnyTag(r, tags) {
			out = append(out, r)
		}
	}
	return out
}

func hasAnyTag(r model.Recipe, tags []string) bool {
	for _, have := range r.Tags {
		for _, want := range tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}
