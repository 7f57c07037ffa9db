package recipe

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dukerupert/plateful/internal/model"
)

//go:embed samples.json
var samplesJSON []byte

var loadSamples = sync.OnceValues(func() ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := json.Unmarshal(samplesJSON, &recipes); err != nil {
		return nil, fmt.Errorf("decode sample recipes: %w", err)
	}
	return recipes, nil
})

// Samples returns a fresh copy of the bundled sample recipes.
func Samples() []model.Recipe {
	recipes, err := loadSamples()
	if err != nil {
		// The file is embedded at build time; a decode failure is a build defect.
		panic(err)
	}
	out := make([]model.Recipe, len(recipes))
	for i, r := range recipes {
		r.Ingredients = append([]model.Ingredient(nil), r.Ingredients...)
		r.Instructions = append([]string(nil), r.Instructions...)
		r.Tags = append([]string(nil), r.Tags...)
		if r.Nutrition != nil {
			n := *r.Nutrition
			r.Nutrition = &n
		}
		out[i] = r
	}
	return out
}
