package session

import (
	"fridge-chef/internal/pantry"
	"fridge-chef/internal/recipe"
	"fridge-chef/internal/shopping"
)

// RecipeSnapshot is a copy of the mounted recipe view.
type RecipeSnapshot struct {
	State      recipe.FetchState
	Recipes    []recipe.Recipe
	Error      string
	ExpandedID string
}

// Loading reports whether the recipe request has not finished yet.
func (r RecipeSnapshot) Loading() bool {
	return r.State == recipe.FetchNotStarted || r.State == recipe.FetchInFlight
}

// Snapshot is a consistent copy of a session for rendering.
type Snapshot struct {
	View            View
	Ingredients     []pantry.Ingredient
	CanFindRecipes  bool
	ShowSuggestions bool
	Suggestions     []string

	// Recipes is nil unless the recipe view is mounted.
	Recipes *RecipeSnapshot

	Shopping          []shopping.Item
	ShoppingTotal     int
	ShoppingCompleted int
	ShoppingPending   int
}

// Snapshot copies the session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		View:              s.view,
		Ingredients:       s.fridge.Items(),
		CanFindRecipes:    s.fridge.CanFindRecipes(),
		ShowSuggestions:   s.fridge.ShowSuggestions(),
		Shopping:          s.shopping.Items(),
		ShoppingTotal:     s.shopping.Len(),
		ShoppingCompleted: s.shopping.Completed(),
		ShoppingPending:   s.shopping.Pending(),
	}
	if snap.ShowSuggestions {
		snap.Suggestions = append([]string(nil), pantry.Suggestions...)
	}
	if s.recipes != nil {
		snap.Recipes = &RecipeSnapshot{
			State:      s.recipes.State(),
			Recipes:    s.recipes.Recipes(),
			Error:      s.recipes.Error(),
			ExpandedID: s.recipes.ExpandedID(),
		}
	}
	return snap
}
