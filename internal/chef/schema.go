package chef

import (
	"encoding/json"
	"fmt"
	"strings"

	"fridge-chef/internal/llm"
	"fridge-chef/internal/recipe"

	"github.com/go-playground/validator/v10"
)

var recipeFields = []string{
	"id", "name", "description", "cookingTime", "difficulty",
	"missingIngredients", "steps", "usedIngredients", "calories",
}

// recipeSchema is the response schema sent with every request.
var recipeSchema = &llm.Schema{
	Type: llm.TypeArray,
	Items: &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"id":          {Type: llm.TypeString},
			"name":        {Type: llm.TypeString},
			"description": {Type: llm.TypeString},
			"cookingTime": {Type: llm.TypeString},
			"difficulty":  {Type: llm.TypeString},
			"calories":    {Type: llm.TypeString},
			"usedIngredients": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "List of ingredients from the user's input used in this recipe",
			},
			"missingIngredients": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "List of ingredients the user needs to buy",
			},
			"steps": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "Step-by-step cooking instructions",
			},
		},
		Required: recipeFields,
	},
}

// wireRecipe mirrors recipe.Recipe with pointer/slice fields so an absent
// field can be told apart from an empty one.
type wireRecipe struct {
	ID                 *string  `json:"id" validate:"required"`
	Name               *string  `json:"name" validate:"required"`
	Description        *string  `json:"description" validate:"required"`
	CookingTime        *string  `json:"cookingTime" validate:"required"`
	Difficulty         *string  `json:"difficulty" validate:"required"`
	Calories           *string  `json:"calories" validate:"required"`
	UsedIngredients    []string `json:"usedIngredients" validate:"required"`
	MissingIngredients []string `json:"missingIngredients" validate:"required"`
	Steps              []string `json:"steps" validate:"required"`
}

func (w wireRecipe) toRecipe() recipe.Recipe {
	return recipe.Recipe{
		ID:                 *w.ID,
		Name:               *w.Name,
		Description:        *w.Description,
		CookingTime:        *w.CookingTime,
		Difficulty:         *w.Difficulty,
		Calories:           *w.Calories,
		UsedIngredients:    w.UsedIngredients,
		MissingIngredients: w.MissingIngredients,
		Steps:              w.Steps,
	}
}

// decodeRecipes parses and validates the model output. Malformed JSON is
// never repaired.
func decodeRecipes(validate *validator.Validate, content string) ([]recipe.Recipe, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty response body")
	}

	var wire []wireRecipe
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse recipes JSON: %w", err)
	}
	if wire == nil {
		return nil, fmt.Errorf("response is not a recipe array")
	}

	recipes := make([]recipe.Recipe, 0, len(wire))
	for i, w := range wire {
		if err := validate.Struct(w); err != nil {
			return nil, fmt.Errorf("recipe %d does not match schema: %w", i, err)
		}
		recipes = append(recipes, w.toRecipe())
	}
	return recipes, nil
}
