// Package llm holds the text generators the meal planner can delegate to.
package llm

import "context"

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
