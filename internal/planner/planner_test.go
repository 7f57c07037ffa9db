package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/plateful/internal/llm"
	"github.com/dukerupert/plateful/internal/model"
)

var recipes = []model.Recipe{
	{ID: "1", Name: "Carbonara", Difficulty: model.DifficultyMedium, PrepTime: 10, CookTime: 15, Tags: []string{"italian", "pasta"},
		Nutrition: &model.Nutrition{Calories: 520, Protein: 28, Carbs: 45, Fat: 24}},
	{ID: "2", Name: "Veggie Stir Fry", Difficulty: model.DifficultyEasy, PrepTime: 15, CookTime: 10, Tags: []string{"asian", "vegetarian"}},
	{ID: "3", Name: "Buddha Bowl", Difficulty: model.DifficultyEasy, PrepTime: 20, CookTime: 0, Tags: []string{"vegan", "gluten-free"}},
	{ID: "4", Name: "Tacos", Difficulty: model.DifficultyEasy, PrepTime: 15, CookTime: 20, Tags: []string{"mexican"}},
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func seeded() *DemoGenerator {
	return NewDemoGenerator(rand.New(rand.NewPCG(1, 2)))
}

func countEatOut(t *testing.T, text string) (eatOut, cooked int) {
	t.Helper()
	var plan map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(text), &plan))
	for _, slots := range plan {
		for _, v := range slots {
			if v == EatOut {
				eatOut++
			} else if v != "" {
				cooked++
			}
		}
	}
	return eatOut, cooked
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		json string
		want int
	}{
		{`"2"`, 2},
		{`"0"`, 0},
		{`3`, 3},
		{`"5+"`, 5},
		{`"never"`, 0},
		{`""`, 0},
		{`-4`, -4},
	}
	for _, tt := range tests {
		var f Frequency
		require.NoError(t, json.Unmarshal([]byte(tt.json), &f), tt.json)
		assert.Equal(t, tt.want, f.Count(), tt.json)
	}

	var f Frequency
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestPreferencesDefaults(t *testing.T) {
	p := Preferences{}.WithDefaults()
	assert.Equal(t, Frequency("2"), p.EatOutFrequency)
	assert.Equal(t, ComplexityMedium, p.MealComplexity)

	p = Preferences{EatOutFrequency: "0", MealComplexity: ComplexitySimple}.WithDefaults()
	assert.Equal(t, Frequency("0"), p.EatOutFrequency)
	assert.Equal(t, ComplexitySimple, p.MealComplexity)
}

func TestDemoEatOutCount(t *testing.T) {
	for _, freq := range []string{"0", "1", "2", "5", "7", "20", "21", "30", "-3", "abc"} {
		t.Run(freq, func(t *testing.T) {
			text, err := seeded().Generate(Preferences{EatOutFrequency: Frequency(freq)}, recipes)
			require.NoError(t, err)
			eatOut, cooked := countEatOut(t, text)
			want := min(max(Frequency(freq).Count(), 0), 21)
			assert.Equal(t, want, eatOut)
			assert.Equal(t, 21-want, cooked)
		})
	}
}

func TestDemoEatOutSpread(t *testing.T) {
	g := seeded()
	slots := g.eatOutSlots(7, 21)
	require.Len(t, slots, 7)
	for i := range 7 {
		hits := 0
		for s := i * 3; s < i*3+3; s++ {
			if slots[s] {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "stratum %d", i)
	}
}

func TestDemoCyclesRecipes(t *testing.T) {
	text, err := seeded().Generate(Preferences{EatOutFrequency: "0"}, recipes)
	require.NoError(t, err)

	var plan map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(text), &plan))
	assert.Equal(t, "1", plan["monday"]["breakfast"])
	assert.Equal(t, "2", plan["monday"]["lunch"])
	assert.Equal(t, "3", plan["monday"]["dinner"])
	assert.Equal(t, "4", plan["tuesday"]["breakfast"])
	assert.Equal(t, "1", plan["tuesday"]["lunch"])
}

func TestFilterRecipes(t *testing.T) {
	ids := func(rs []model.Recipe) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		prefs Preferences
		want  []string
	}{
		{"none", Preferences{}, []string{"1", "2", "3", "4"}},
		{"vegetarian includes vegan", Preferences{DietaryRestrictions: []string{"vegetarian"}}, []string{"2", "3"}},
		{"vegan", Preferences{DietaryRestrictions: []string{"vegan"}}, []string{"3"}},
		{"gluten-free", Preferences{DietaryRestrictions: []string{"gluten-free"}}, []string{"3"}},
		{"cuisine", Preferences{PreferredCuisines: []string{"mexican", "italian"}}, []string{"1", "4"}},
		{"restriction and cuisine", Preferences{DietaryRestrictions: []string{"vegetarian"}, PreferredCuisines: []string{"asian"}}, []string{"2"}},
		{"empty result falls back", Preferences{PreferredCuisines: []string{"french"}}, []string{"1", "2", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(filterRecipes(tt.prefs, recipes)))
		})
	}
}

func TestParseResponse(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	text := "Here is your plan:\n```json\n" + `{
  "monday": {"breakfast": "1", "lunch": "EAT_OUT", "dinner": "999", "snack": "2"},
  "wednesday": {"breakfast": 7, "dinner": "3"}
}` + "\n```\nEnjoy!"

	got, err := parseResponse(text, recipes, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotContains(t, got, "tuesday")

	mon := got["monday"]
	require.Len(t, mon, 3, "snack is never planned")
	assert.Equal(t, model.MealPlanned, mon["breakfast"].State)
	assert.Equal(t, "Carbonara", mon["breakfast"].Recipe.Name)
	assert.Equal(t, model.MealEatenOut, mon["lunch"].State)
	assert.Equal(t, "Eat out", mon["lunch"].Notes)
	assert.Nil(t, mon["lunch"].Recipe)
	assert.Equal(t, &now, mon["lunch"].CompletedAt)
	assert.Equal(t, model.MealEmpty, mon["dinner"].State)

	wed := got["wednesday"]
	assert.Equal(t, model.MealEmpty, wed["breakfast"].State)
	assert.Equal(t, model.MealEmpty, wed["lunch"].State)
	assert.Equal(t, model.MealPlanned, wed["dinner"].State)

	for _, meals := range got {
		for _, m := range meals {
			assert.True(t, m.Valid())
		}
	}
}

func TestParseResponseErrors(t *testing.T) {
	_, err := ParseResponse("I cannot help with that.", recipes)
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseResponse(`{"monday": {"breakfast": }`, recipes)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Preferences{
		DietaryRestrictions: []string{"vegetarian", "gluten-free"},
		EatOutFrequency:     "3",
	}, recipes)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Dietary restrictions: vegetarian, gluten-free")
	assert.Contains(t, prompt, "Eat out frequency: 3 times per week")
	assert.Contains(t, prompt, "Preferred cuisines: Any")
	assert.Contains(t, prompt, "Meal complexity preference: medium")
	assert.Contains(t, prompt, "Special requests: None")
	assert.Contains(t, prompt, `- id "1": Carbonara (medium, 25 min total, tags: italian, pasta), 520 kcal, 28g protein`)
	assert.Contains(t, prompt, `- id "4": Tacos (easy, 35 min total, tags: mexican)`)
	assert.Contains(t, prompt, `"sunday": {`)
	assert.Contains(t, prompt, "EAT_OUT")
}

func TestPlannerDemo(t *testing.T) {
	p := New(Config{}, seeded(), slog.Default())
	assert.Equal(t, ProviderDemo, p.Provider())

	got, err := p.Generate(context.Background(), Preferences{EatOutFrequency: "4"}, recipes, "")
	require.NoError(t, err)
	require.Len(t, got, 7)

	eatOut := 0
	for _, meals := range got {
		for _, m := range meals {
			if m.State == model.MealEatenOut {
				eatOut++
			}
		}
	}
	assert.Equal(t, 4, eatOut)
}

func TestPlannerClaude(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		p := New(Config{Provider: ProviderClaude}, nil, slog.Default())
		_, err := p.Generate(context.Background(), Preferences{}, recipes, "")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Equal(t, "Claude API key not set. Please set your API key first.", err.Error())
	})

	t.Run("request key wins", func(t *testing.T) {
		fake := &fakeGenerator{text: `{"friday": {"dinner": "4"}}`}
		var usedKey string
		p := New(Config{Provider: ProviderClaude, ClaudeAPIKey: "configured"}, nil, slog.Default())
		p.newClaude = func(apiKey string) llm.TextGenerator {
			usedKey = apiKey
			return fake
		}

		got, err := p.Generate(context.Background(), Preferences{}, recipes, "from-request")
		require.NoError(t, err)
		assert.Equal(t, "from-request", usedKey)
		assert.Equal(t, "Tacos", got["friday"]["dinner"].Recipe.Name)
		assert.True(t, strings.HasPrefix(fake.prompt, "You are a meal planning assistant."))
	})

	t.Run("upstream error", func(t *testing.T) {
		upstream := &llm.APIError{StatusCode: 401, Message: "Claude API error: invalid key"}
		p := New(Config{Provider: ProviderClaude, ClaudeAPIKey: "k"}, nil, slog.Default())
		p.newClaude = func(string) llm.TextGenerator { return &fakeGenerator{err: upstream} }

		_, err := p.Generate(context.Background(), Preferences{}, recipes, "")
		var apiErr *llm.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 401, apiErr.StatusCode)
	})
}

func TestPlannerGemini(t *testing.T) {
	fake := &fakeGenerator{text: "no json at all"}
	p := New(Config{Provider: ProviderGemini, Gemini: fake}, nil, slog.Default())
	_, err := p.Generate(context.Background(), Preferences{}, recipes, "")
	assert.ErrorIs(t, err, ErrNoJSON)

	p = New(Config{Provider: ProviderGemini}, nil, slog.Default())
	_, err = p.Generate(context.Background(), Preferences{}, recipes, "")
	assert.Error(t, err)
}
