package recipe

import (
	"encoding/json"
	"testing"
)

func TestRecipeDecodesCamelCaseFields(t *testing.T) {
	data := `{"id":"pho","name":"Phở","description":"d","cookingTime":"30 phút","difficulty":"Khó","calories":"450",
		"usedIngredients":["Thịt bò"],"missingIngredients":["Bánh phở"],"steps":["Nấu nước dùng"]}`

	var r Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if r.CookingTime != "30 phút" || r.Calories != "450" {
		t.Errorf("unexpected recipe: %+v", r)
	}
	if !r.HasMissing() {
		t.Error("expected missing ingredients")
	}

	r.MissingIngredients = nil
	if r.HasMissing() {
		t.Error("expected no missing ingredients")
	}
}
