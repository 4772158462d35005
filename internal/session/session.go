// Package session holds the per-user application state shared by every front
// end: the fridge, the shopping list, the selected view and the mounted
// recipe view.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fridge-chef/internal/chef"
	"fridge-chef/internal/pantry"
	"fridge-chef/internal/recipe"
	"fridge-chef/internal/shopping"
)

// View is one of the three screens.
type View string

const (
	ViewFridge   View = "FRIDGE"
	ViewRecipes  View = "RECIPES"
	ViewShopping View = "SHOPPING"
)

// ParseView converts a view name, reporting false for unknown names.
func ParseView(s string) (View, bool) {
	switch v := View(s); v {
	case ViewFridge, ViewRecipes, ViewShopping:
		return v, true
	}
	return "", false
}

var (
	// ErrEmptyFridge is returned when recipes are requested with no ingredients.
	ErrEmptyFridge = errors.New("session: fridge is empty")
	// ErrNoRecipeView is returned for recipe actions outside the recipe view.
	ErrNoRecipeView = errors.New("session: recipe view is not open")
	// ErrRecipeNotFound is returned for unknown recipe ids.
	ErrRecipeNotFound = errors.New("session: recipe not found")
)

// Session is the root state container of one user.
type Session struct {
	ID string

	mu        sync.Mutex
	view      View
	fridge    *pantry.Fridge
	shopping  *shopping.List
	recipes   *recipe.View
	suggester chef.Suggester
	lastSeen  time.Time
}

// New creates a session showing the fridge.
func New(id string, suggester chef.Suggester) *Session {
	return &Session{
		ID:        id,
		view:      ViewFridge,
		fridge:    pantry.NewFridge(),
		shopping:  shopping.NewList(),
		suggester: suggester,
		lastSeen:  time.Now(),
	}
}

func (s *Session) touch() { s.lastSeen = time.Now() }

// LastSeen returns the time of the last state change or read.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// CurrentView returns the selected view.
func (s *Session) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Navigate selects a view. Entering the recipe view from elsewhere mounts a
// fresh recipe view for the current ingredients; leaving it discards it.
// Navigating to the current view changes nothing.
func (s *Session) Navigate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigate(v)
}

func (s *Session) navigate(v View) {
	s.touch()
	if v == s.view {
		return
	}
	if s.view == ViewRecipes {
		s.recipes = nil
	}
	if v == ViewRecipes {
		s.recipes = recipe.NewView(s.fridge.Names())
	}
	s.view = v
}

// AddIngredient adds a free-text ingredient. Blank input is ignored.
func (s *Session) AddIngredient(name string) (pantry.Ingredient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.fridge.Add(name)
}

// AddSuggestion adds one of the predefined suggestions by name.
func (s *Session) AddSuggestion(name string) (pantry.Ingredient, bool) {
	for _, suggestion := range pantry.Suggestions {
		if suggestion == name {
			return s.AddIngredient(name)
		}
	}
	return pantry.Ingredient{}, false
}

// RemoveIngredient removes the ingredient with the given id.
func (s *Session) RemoveIngredient(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.fridge.Remove(id)
}

// CanFindRecipes reports whether the proceed-to-recipes action is enabled.
func (s *Session) CanFindRecipes() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fridge.CanFindRecipes()
}

// FindRecipes moves to the recipe view if the fridge has ingredients.
func (s *Session) FindRecipes() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fridge.CanFindRecipes() {
		return ErrEmptyFridge
	}
	s.navigate(ViewRecipes)
	return nil
}

// LoadRecipes performs the one request of the mounted recipe view. It returns
// immediately if no recipe view is mounted or its request was already
// started. The result is dropped if the view was unmounted meanwhile.
func (s *Session) LoadRecipes(ctx context.Context) {
	s.mu.Lock()
	view := s.recipes
	if view == nil || !view.Start() {
		s.mu.Unlock()
		return
	}
	ingredients := view.Ingredients()
	s.mu.Unlock()

	recipes, err := s.suggest(ctx, ingredients)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipes != view {
		log.Printf("Session %s: discarding recipes for a closed recipe view", s.ID)
		return
	}
	if err != nil {
		view.Fail(chef.UserMessage(err))
		return
	}
	view.Complete(recipes)
}

// suggest calls the suggester, turning a panic into an error so the view
// still leaves the in-flight state.
func (s *Session) suggest(ctx context.Context, ingredients []string) (recipes []recipe.Recipe, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Session %s: recipe suggester panicked: %v", s.ID, r)
			err = fmt.Errorf("recipe suggester panicked: %v", r)
		}
	}()
	return s.suggester.Suggest(ctx, ingredients)
}

// RecipeIDAt returns the id of the i-th loaded recipe of the mounted view.
func (s *Session) RecipeIDAt(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipes == nil {
		return "", false
	}
	recipes := s.recipes.Recipes()
	if i < 0 || i >= len(recipes) {
		return "", false
	}
	return recipes[i].ID, true
}

// ToggleRecipe expands the recipe with the given id, collapsing any other.
func (s *Session) ToggleRecipe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipes == nil {
		return ErrNoRecipeView
	}
	if _, ok := s.recipes.Recipe(id); !ok {
		return ErrRecipeNotFound
	}
	s.touch()
	s.recipes.Toggle(id)
	return nil
}

// AddMissingToShopping appends every missing ingredient of the recipe to the
// shopping list as new unchecked items, without merging duplicates.
func (s *Session) AddMissingToShopping(recipeID string) ([]shopping.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipes == nil {
		return nil, ErrNoRecipeView
	}
	r, ok := s.recipes.Recipe(recipeID)
	if !ok {
		return nil, ErrRecipeNotFound
	}
	s.touch()
	return s.shopping.AddAll(r.MissingIngredients), nil
}

// AddShoppingItem adds an item typed by the user.
func (s *Session) AddShoppingItem(name string) (shopping.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.shopping.Add(name)
}

// ToggleShoppingItem flips the checked flag of an item.
func (s *Session) ToggleShoppingItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.shopping.Toggle(id)
}

// RemoveShoppingItem deletes an item.
func (s *Session) RemoveShoppingItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.shopping.Remove(id)
}

// ClearShopping empties the shopping list if the confirmer agrees.
func (s *Session) ClearShopping(c shopping.Confirmer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.shopping.Clear(c)
}
