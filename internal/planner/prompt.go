package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/dukerupert/plateful/internal/model"
)

//go:embed prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(promptText))

// planDays are the days the model is asked to fill.
var planDays = model.Days

// planMealTypes are the slots the model fills; snacks are left to the user.
var planMealTypes = []string{"breakfast", "lunch", "dinner"}

// BuildPrompt renders the planning prompt for prefs over recipes.
func BuildPrompt(prefs Preferences, recipes []model.Recipe) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct {
		Prefs   Preferences
		Recipes []model.Recipe
		Days    []string
	}{prefs.WithDefaults(), recipes, planDays})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
