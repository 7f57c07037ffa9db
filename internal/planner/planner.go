// Package planner suggests a week of meals from the recipe catalog, either
// locally or through a language model.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/plateful/internal/llm"
	"github.com/dukerupert/plateful/internal/model"
)

const (
	ProviderDemo   = "demo"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

var ErrMissingAPIKey = errors.New("Claude API key not set. Please set your API key first.")

// Config selects and configures the text generator.
type Config struct {
	Provider       string
	ClaudeProxyURL string
	ClaudeAPIKey   string
	// Gemini is used when Provider is gemini.
	Gemini     llm.TextGenerator
	HTTPClient *http.Client
}

type Planner struct {
	cfg       Config
	demo      *DemoGenerator
	newClaude func(apiKey string) llm.TextGenerator
	logger    *slog.Logger
}

func New(cfg Config, demo *DemoGenerator, logger *slog.Logger) *Planner {
	if cfg.Provider == "" {
		cfg.Provider = ProviderDemo
	}
	if demo == nil {
		demo = NewDemoGenerator(nil)
	}
	p := &Planner{cfg: cfg, demo: demo, logger: logger}
	p.newClaude = func(apiKey string) llm.TextGenerator {
		return llm.NewProxyClient(cfg.ClaudeProxyURL, apiKey, cfg.HTTPClient)
	}
	return p
}

func (p *Planner) Provider() string {
	return p.cfg.Provider
}

// Generate suggests meals for a week. apiKey overrides the configured Claude
// key when set.
func (p *Planner) Generate(ctx context.Context, prefs Preferences, recipes []model.Recipe, apiKey string) (Suggestion, error) {
	prefs = prefs.WithDefaults()

	var text string
	var err error
	switch p.cfg.Provider {
	case ProviderDemo:
		text, err = p.demo.Generate(prefs, recipes)
	case ProviderClaude:
		if apiKey == "" {
			apiKey = p.cfg.ClaudeAPIKey
		}
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		text, err = p.ask(ctx, p.newClaude(apiKey), prefs, recipes)
	case ProviderGemini:
		if p.cfg.Gemini == nil {
			return nil, errors.New("gemini provider is not configured")
		}
		text, err = p.ask(ctx, p.cfg.Gemini, prefs, recipes)
	default:
		return nil, fmt.Errorf("unknown provider %q", p.cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	suggestion, err := ParseResponse(text, recipes)
	if err != nil {
		p.logger.Warn("unparseable meal plan response", "provider", p.cfg.Provider, "error", err)
		return nil, err
	}
	p.logger.Info("meal plan generated", "provider", p.cfg.Provider, "days", len(suggestion))
	return suggestion, nil
}

func (p *Planner) ask(ctx context.Context, gen llm.TextGenerator, prefs Preferences, recipes []model.Recipe) (string, error) {
	prompt, err := BuildPrompt(prefs, recipes)
	if err != nil {
		return "", err
	}
	p.logger.Debug("sending meal plan prompt", "provider", p.cfg.Provider, "recipes", len(recipes))
	text, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate meal plan: %w", err)
	}
	return text, nil
}
