// Package chef turns an ingredient list into AI-generated recipe suggestions.
package chef

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fridge-chef/internal/llm"
	"fridge-chef/internal/recipe"
	"fridge-chef/internal/shared"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotConfigured means no API credential is available.
	ErrNotConfigured = errors.New("chef: API key not configured")
	// ErrUpstream covers network failures, empty bodies and invalid JSON.
	ErrUpstream = errors.New("chef: recipe generation failed")
)

const (
	msgNotConfigured = "Vui lòng cấu hình API Key để sử dụng tính năng này."
	msgUpstream      = "Có lỗi xảy ra khi gọi trợ lý ảo. Vui lòng thử lại sau."
)

const agentName = "Chef"

// Suggester produces recipe suggestions for ingredient names.
type Suggester interface {
	Suggest(ctx context.Context, ingredients []string) ([]recipe.Recipe, error)
}

// UsageRecorder stores token usage of a model call.
type UsageRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Chef asks a JSON-capable model for recipes.
type Chef struct {
	gen      llm.JSONGenerator
	recorder UsageRecorder
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Chef. A nil generator means no credential is configured and
// every non-trivial call fails with ErrNotConfigured. recorder may be nil.
func New(gen llm.JSONGenerator, recorder UsageRecorder) *Chef {
	return &Chef{
		gen:      gen,
		recorder: recorder,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Suggest returns 1 to 5 recipes for the ingredients, or an empty slice
// without any request when there are no ingredients.
func (c *Chef) Suggest(ctx context.Context, ingredients []string) ([]recipe.Recipe, error) {
	if c.gen == nil {
		log.Printf("Chef: API key is missing")
		return nil, ErrNotConfigured
	}

	if len(ingredients) == 0 {
		return []recipe.Recipe{}, nil
	}

	prompt, err := buildPrompt(ingredients)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build prompt: %w", ErrUpstream, err)
	}

	start := time.Now()
	resp, err := c.gen.GenerateJSON(ctx, llm.JSONRequest{
		System: systemInstruction,
		Prompt: prompt,
		Schema: recipeSchema,
	})
	c.recordUsage(resp.Usage, time.Since(start))
	if err != nil {
		log.Printf("Chef: generation failed for %d ingredients: %v", len(ingredients), err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	recipes, err := decodeRecipes(c.validate, resp.Content)
	if err != nil {
		log.Printf("Chef: invalid model response: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(recipes) == 0 {
		log.Printf("Chef: model returned no recipes")
		return nil, fmt.Errorf("%w: no recipes returned", ErrUpstream)
	}
	if len(recipes) > maxRecipes {
		recipes = recipes[:maxRecipes]
	}

	ts := c.now().UnixMilli()
	for i := range recipes {
		base := recipes[i].ID
		if base == "" {
			base = "recipe"
		}
		recipes[i].ID = fmt.Sprintf("%s-%d-%d", base, ts, i)
	}

	return recipes, nil
}

func (c *Chef) recordUsage(usage shared.TokenUsage, latency time.Duration) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.RecordMeta(shared.AgentMeta{
		AgentName: agentName,
		Usage:     usage,
		Latency:   latency,
	})
	if err != nil {
		log.Printf("Warning: failed to record chef usage: %v", err)
	}
}

// UserMessage maps a Suggest error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return msgNotConfigured
	default:
		return msgUpstream
	}
}
