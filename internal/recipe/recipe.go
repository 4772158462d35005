package recipe

// Recipe is one AI-generated cooking suggestion.
type Recipe struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	CookingTime        string   `json:"cookingTime"`
	Difficulty         string   `json:"difficulty"`
	Calories           string   `json:"calories"`
	UsedIngredients    []string `json:"usedIngredients"`
	MissingIngredients []string `json:"missingIngredients"`
	Steps              []string `json:"steps"`
}

// HasMissing reports whether the recipe needs ingredients the user lacks.
func (r Recipe) HasMissing() bool { return len(r.MissingIngredients) > 0 }
