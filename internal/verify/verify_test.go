package verify

import (
	"bytes"
	"strings"
	"testing"

	"mspro-labs/dining-buddy/internal/models"
)

func TestParseSuggestions(t *testing.T) {
	claims := ParseSuggestions("**1. Grilled Chicken - with herbs**\n2. Tofu Stir Fry")
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d: %+v", len(claims), claims)
	}
	if claims[0] != (Claim{Position: 1, DishName: "Grilled Chicken"}) {
		t.Errorf("claim 1 wrong: %+v", claims[0])
	}
	if claims[1] != (Claim{Position: 2, DishName: "Tofu Stir Fry"}) {
		t.Errorf("claim 2 wrong: %+v", claims[1])
	}
}

func TestParseSuggestionsSkipsProse(t *testing.T) {
	text := `Here are some dinner options at Franklin:

1. **Pasta Primavera** - light and fresh
   A vegetable pasta.
  2. Black Bean Burger
- Not numbered
3.Chili
Enjoy your meal!`

	var names []string
	for _, c := range ParseSuggestions(text) {
		names = append(names, c.DishName)
	}
	want := []string{"Pasta Primavera", "Black Bean Burger", "3.Chili"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, names)
	}
}

func TestParseSuggestionsEmpty(t *testing.T) {
	if claims := ParseSuggestions("I could not find any meals."); len(claims) != 0 {
		t.Errorf("expected no claims, got %+v", claims)
	}
}

func sampleTable() []models.DishRow {
	return []models.DishRow{
		{Location: "Franklin Dining Commons", Meal: "Dinner", DishName: "Grilled Chicken", Allergens: "Gluten"},
		{Location: "Franklin Dining Commons", Meal: "Dinner", DishName: "Tofu Stir Fry", Diets: "Vegan, Plant Based", Allergens: "Soy"},
		{Location: "Worcester Commons", Meal: "Lunch", DishName: "Tofu Stir Fry", Diets: "Vegan", Allergens: "Soy"},
		{Location: "Berkshire Dining Commons", Meal: "Lunch", DishName: "Caesar Salad", Allergens: "Dairy, Eggs, Fish (Anchovy)"},
	}
}

func TestEndToEndSingleRow(t *testing.T) {
	table := []models.DishRow{
		{Location: "Franklin Dining Commons", Meal: "Dinner", DishName: "Grilled Chicken", Allergens: "Gluten"},
	}
	text := "1. Grilled Chicken - description"

	if got := LocationAccuracy(text, table, "Franklin Dining Commons"); got != 100.0 {
		t.Errorf("location accuracy: expected 100, got %v", got)
	}
	if got := AllergenAccuracy(text, table, "Gluten"); got != 0.0 {
		t.Errorf("allergen accuracy (Gluten): expected 0, got %v", got)
	}
	if got := AllergenAccuracy(text, table, "Dairy"); got != 100.0 {
		t.Errorf("allergen accuracy (Dairy): expected 100, got %v", got)
	}
}

func TestChecks(t *testing.T) {
	table := sampleTable()
	claims := []Claim{
		{1, "Grilled Chicken"},
		{2, "Tofu Stir Fry"},
		{3, "Caesar Salad"},
		{4, "Unicorn Steak"},
	}

	testCases := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"location", ByLocation(claims, table, "Franklin Dining Commons"), 50},
		{"meal", ByMealType(claims, table, "Lunch"), 50},
		{"meal is exact", ByMealType(claims, table, "lunch"), 0},
		{"allergen soy", ByAllergen(claims, table, "soy"), 75},
		{"allergen fish nested", ByAllergen(claims, table, "FISH"), 75},
		{"allergen none", ByAllergen(claims, table, "Sesame"), 100},
		{"diet", ByDiet(claims, table, "vegan"), 25},
		{"diet substring", ByDiet(claims, table, "plant"), 25},
	}
	for _, tc := range testCases {
		if tc.got != tc.expected {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, tc.got)
		}
	}
}

func TestEmptyClaimsScoreZero(t *testing.T) {
	table := sampleTable()
	if got := ByAllergen(nil, table, "Gluten"); got != 0 {
		t.Errorf("ByAllergen with no claims: expected 0, got %v", got)
	}
	if got := ByLocation(nil, table, "Franklin Dining Commons"); got != 0 {
		t.Errorf("ByLocation with no claims: expected 0, got %v", got)
	}
	if got := ByMealType([]Claim{}, table, "Dinner"); got != 0 {
		t.Errorf("ByMealType with no claims: expected 0, got %v", got)
	}
	if got := ByDiet(nil, table, "Vegan"); got != 0 {
		t.Errorf("ByDiet with no claims: expected 0, got %v", got)
	}
}

func TestEmptyTable(t *testing.T) {
	text := "1. Grilled Chicken\n2. Tofu Stir Fry"
	if got := LocationAccuracy(text, nil, "Franklin Dining Commons"); got != 0 {
		t.Errorf("expected 0 against an empty table, got %v", got)
	}
	// Nothing found means nothing flagged.
	if got := AllergenAccuracy(text, nil, "Gluten"); got != 100 {
		t.Errorf("expected 100 allergen compliance against an empty table, got %v", got)
	}
}

func TestNullAllergensNeverMatch(t *testing.T) {
	table := []models.DishRow{{Location: "X", Meal: "Dinner", DishName: "Rice"}}
	claims := []Claim{{1, "Rice"}}
	if got := ByAllergen(claims, table, ""); got != 100 {
		t.Errorf("empty allergen field should not match, got %v", got)
	}
	if got := ByDiet(claims, table, ""); got != 0 {
		t.Errorf("empty diets field should not match, got %v", got)
	}
}

func TestCheckReport(t *testing.T) {
	text := "1. Grilled Chicken - smoky\n2. Tofu Stir Fry - crisp"
	rep := Check(text, sampleTable(), Expectations{Location: "Franklin Dining Commons", Allergen: "Soy"})

	if len(rep.Claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(rep.Claims))
	}
	if rep.Location == nil || *rep.Location != 100 {
		t.Errorf("location metric wrong: %v", rep.Location)
	}
	if rep.Allergen == nil || *rep.Allergen != 50 {
		t.Errorf("allergen metric wrong: %v", rep.Allergen)
	}
	if rep.Meal != nil || rep.Diet != nil {
		t.Error("unrequested checks should be nil")
	}

	var buf bytes.Buffer
	rep.Print(&buf)
	want := "Location Accuracy: 100.00%\nAllergen Accuracy: 50.00%\n"
	if buf.String() != want {
		t.Errorf("Print: expected %q, got %q", want, buf.String())
	}
}
