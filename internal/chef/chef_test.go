package chef

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fridge-chef/internal/llm"
	"fridge-chef/internal/shared"
)

const validRecipe = `{
	"id": "%s",
	"name": "Trứng chiên cà chua",
	"description": "Món ăn nhanh",
	"cookingTime": "15 phút",
	"difficulty": "Dễ",
	"calories": "250",
	"usedIngredients": ["Trứng", "Cà chua"],
	"missingIngredients": ["Hành tây", "Tỏi"],
	"steps": ["Đập trứng", "Chiên"]
}`

// mockGenerator is a fake llm.JSONGenerator that counts calls.
type mockGenerator struct {
	response string
	usage    shared.TokenUsage
	err      error
	calls    int
	lastReq  llm.JSONRequest
}

func (m *mockGenerator) GenerateJSON(ctx context.Context, req llm.JSONRequest) (llm.ContentResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return llm.ContentResponse{Usage: m.usage}, m.err
	}
	return llm.ContentResponse{Content: m.response, Usage: m.usage}, nil
}

type mockRecorder struct {
	metas []shared.AgentMeta
}

func (m *mockRecorder) RecordMeta(meta shared.AgentMeta) error {
	m.metas = append(m.metas, meta)
	return nil
}

func newTestChef(gen llm.JSONGenerator, rec UsageRecorder) *Chef {
	c := New(gen, rec)
	c.now = func() time.Time { return time.UnixMilli(1760000000000) }
	return c
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	ingredients := []string{"Trứng", "Cà chua"}

	t.Run("Success", func(t *testing.T) {
		gen := &mockGenerator{
			response: "[" + fmt.Sprintf(validRecipe, "trung") + "," + fmt.Sprintf(validRecipe, "trung") + "]",
			usage:    shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, Model: "gemini-2.5-flash"},
		}
		rec := &mockRecorder{}
		c := newTestChef(gen, rec)

		recipes, err := c.Suggest(ctx, ingredients)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if gen.calls != 1 {
			t.Errorf("Expected 1 call, got %d", gen.calls)
		}
		if len(recipes) != 2 {
			t.Fatalf("Expected 2 recipes, got %d", len(recipes))
		}
		if recipes[0].ID != "trung-1760000000000-0" || recipes[1].ID != "trung-1760000000000-1" {
			t.Errorf("Expected unique rewritten ids, got '%s' and '%s'", recipes[0].ID, recipes[1].ID)
		}
		if len(recipes[0].MissingIngredients) != 2 || recipes[0].Steps[1] != "Chiên" {
			t.Errorf("Unexpected recipe content: %+v", recipes[0])
		}

		if !strings.Contains(gen.lastReq.Prompt, "Trứng, Cà chua") {
			t.Errorf("Expected prompt to list ingredients, got '%s'", gen.lastReq.Prompt)
		}
		if !strings.Contains(gen.lastReq.System, "Tiếng Việt") {
			t.Error("Expected Vietnamese system instruction")
		}
		if gen.lastReq.Schema == nil || gen.lastReq.Schema.Type != llm.TypeArray {
			t.Error("Expected array response schema")
		}
		if len(gen.lastReq.Schema.Items.Required) != 9 {
			t.Errorf("Expected all 9 fields required, got %v", gen.lastReq.Schema.Items.Required)
		}

		if len(rec.metas) != 1 || rec.metas[0].AgentName != "Chef" || rec.metas[0].Usage.PromptTokens != 100 {
			t.Errorf("Expected usage to be recorded, got %+v", rec.metas)
		}
	})

	t.Run("EmptyIDFallsBack", func(t *testing.T) {
		gen := &mockGenerator{response: "[" + fmt.Sprintf(validRecipe, "") + "]"}
		recipes, err := newTestChef(gen, nil).Suggest(ctx, ingredients)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if recipes[0].ID != "recipe-1760000000000-0" {
			t.Errorf("Expected fallback id, got '%s'", recipes[0].ID)
		}
	})

	t.Run("TruncatesToFive", func(t *testing.T) {
		items := make([]string, 7)
		for i := range items {
			items[i] = fmt.Sprintf(validRecipe, fmt.Sprintf("r%d", i))
		}
		gen := &mockGenerator{response: "[" + strings.Join(items, ",") + "]"}
		recipes, err := newTestChef(gen, nil).Suggest(ctx, ingredients)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recipes) != 5 {
			t.Errorf("Expected 5 recipes, got %d", len(recipes))
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		c := newTestChef(nil, nil)
		_, err := c.Suggest(ctx, ingredients)
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("Expected ErrNotConfigured, got %v", err)
		}
		if UserMessage(err) != msgNotConfigured {
			t.Errorf("Unexpected user message '%s'", UserMessage(err))
		}
	})

	t.Run("NotConfiguredBeforeEmptyCheck", func(t *testing.T) {
		_, err := newTestChef(nil, nil).Suggest(ctx, nil)
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("Expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("EmptyIngredients", func(t *testing.T) {
		gen := &mockGenerator{}
		recipes, err := newTestChef(gen, nil).Suggest(ctx, []string{})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if recipes == nil || len(recipes) != 0 {
			t.Errorf("Expected empty non-nil result, got %v", recipes)
		}
		if gen.calls != 0 {
			t.Errorf("Expected no request, got %d calls", gen.calls)
		}
	})
}

func TestSuggestUpstreamErrors(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		gen  *mockGenerator
	}{
		{"NetworkError", &mockGenerator{err: errors.New("connection reset")}},
		{"EmptyBody", &mockGenerator{response: "  "}},
		{"MalformedJSON", &mockGenerator{response: `[{"id": "a",`}},
		{"TrailingGarbage", &mockGenerator{response: "[" + fmt.Sprintf(validRecipe, "a") + "] extra"}},
		{"NotAnArray", &mockGenerator{response: fmt.Sprintf(validRecipe, "a")}},
		{"Null", &mockGenerator{response: "null"}},
		{"NoRecipes", &mockGenerator{response: "[]"}},
		{"MissingField", &mockGenerator{response: `[{"id": "a", "name": "x", "description": "d", "cookingTime": "1", "difficulty": "Dễ", "usedIngredients": [], "missingIngredients": [], "steps": []}]`}},
		{"WrongType", &mockGenerator{response: `[{"id": "a", "name": "x", "description": "d", "cookingTime": "1", "difficulty": "Dễ", "calories": 250, "usedIngredients": [], "missingIngredients": [], "steps": []}]`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestChef(tc.gen, nil).Suggest(ctx, []string{"Trứng"})
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("Expected ErrUpstream, got %v", err)
			}
			if UserMessage(err) != msgUpstream {
				t.Errorf("Unexpected user message '%s'", UserMessage(err))
			}
			if tc.gen.calls != 1 {
				t.Errorf("Expected exactly 1 call, got %d", tc.gen.calls)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil error")
	}
	if UserMessage(errors.New("boom")) != msgUpstream {
		t.Error("Expected generic message for unknown errors")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt([]string{"Trứng", "Cà chua"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(prompt, "3-5 món") {
		t.Errorf("Expected recipe count range in prompt, got '%s'", prompt)
	}
	if !strings.Contains(prompt, "Trứng, Cà chua") {
		t.Errorf("Expected ingredients in prompt, got '%s'", prompt)
	}
}
