// Package pantry holds the ingredients the user has at hand.
package pantry

import (
	"strings"
	"time"

	"fridge-chef/internal/shared"
)

// Suggestions are the quick-add ingredient names offered while the fridge is empty.
var Suggestions = []string{"Trứng", "Cà chua", "Thịt bò", "Hành tây", "Đậu hũ", "Sữa tươi", "Cà rốt"}

// Ingredient is a food item the user has.
type Ingredient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Fridge is the ordered ingredient list. It is not safe for concurrent use;
// the owning session serializes access.
type Fridge struct {
	items []Ingredient
	now   func() time.Time
}

// NewFridge creates an empty fridge.
func NewFridge() *Fridge {
	return &Fridge{now: time.Now}
}

// Add appends an ingredient after trimming the name. Blank names are ignored
// and reported with ok=false.
func (f *Fridge) Add(name string) (Ingredient, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ingredient{}, false
	}
	ing := Ingredient{ID: shared.NewID(f.now()), Name: name}
	f.items = append(f.items, ing)
	return ing, true
}

// Remove deletes the ingredient with the given id. Entries sharing the same
// name are left alone.
func (f *Fridge) Remove(id string) bool {
	for i, ing := range f.items {
		if ing.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the ingredients in insertion order.
func (f *Fridge) Items() []Ingredient {
	out := make([]Ingredient, len(f.items))
	copy(out, f.items)
	return out
}

// Names returns the ingredient names in insertion order.
func (f *Fridge) Names() []string {
	names := make([]string, 0, len(f.items))
	for _, ing := range f.items {
		names = append(names, ing.Name)
	}
	return names
}

// CanFindRecipes reports whether the proceed-to-recipes action is enabled.
func (f *Fridge) CanFindRecipes() bool { return len(f.items) > 0 }

// ShowSuggestions reports whether the quick-add suggestions are offered.
func (f *Fridge) ShowSuggestions() bool { return len(f.items) == 0 }
