package chef

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed recipes_prompt.md
var recipesPrompt string

const systemInstruction = "Bạn là một đầu bếp chuyên nghiệp và thân thiện. Nhiệm vụ của bạn là giúp người dùng nấu ăn ngon từ những gì họ có sẵn. Phản hồi hoàn toàn bằng Tiếng Việt."

const (
	minRecipes = 3
	maxRecipes = 5
)

var promptTmpl = template.Must(
	template.New("recipes").Funcs(template.FuncMap{"join": strings.Join}).Parse(recipesPrompt),
)

type promptData struct {
	Ingredients []string
	MinRecipes  int
	MaxRecipes  int
}

func buildPrompt(ingredients []string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		Ingredients: ingredients,
		MinRecipes:  minRecipes,
		MaxRecipes:  maxRecipes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
