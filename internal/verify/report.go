package verify

import (
	"fmt"
	"io"

	"mspro-labs/dining-buddy/internal/models"
)

// LocationAccuracy parses text and runs ByLocation.
func LocationAccuracy(text string, rows []models.DishRow, location string) float64 {
	return ByLocation(ParseSuggestions(text), rows, location)
}

// MealAccuracy parses text and runs ByMealType.
func MealAccuracy(text string, rows []models.DishRow, meal string) float64 {
	return ByMealType(ParseSuggestions(text), rows, meal)
}

// AllergenAccuracy parses text and runs ByAllergen.
func AllergenAccuracy(text string, rows []models.DishRow, allergen string) float64 {
	return ByAllergen(ParseSuggestions(text), rows, allergen)
}

// DietAccuracy parses text and runs ByDiet.
func DietAccuracy(text string, rows []models.DishRow, diet string) float64 {
	return ByDiet(ParseSuggestions(text), rows, diet)
}

// Expectations selects the checks to run. Empty fields are skipped.
type Expectations struct {
	Location string `json:"location,omitempty"`
	Meal     string `json:"meal,omitempty"`
	Allergen string `json:"allergen,omitempty"`
	Diet     string `json:"diet,omitempty"`
}

// Report holds the accuracy of each check that ran; nil means not checked.
type Report struct {
	Claims   []Claim  `json:"claims"`
	Location *float64 `json:"location_accuracy,omitempty"`
	Meal     *float64 `json:"meal_type_accuracy,omitempty"`
	Allergen *float64 `json:"allergen_accuracy,omitempty"`
	Diet     *float64 `json:"food_type_accuracy,omitempty"`
}

// Check parses text once and runs every check with an expected value.
func Check(text string, rows []models.DishRow, exp Expectations) Report {
	claims := ParseSuggestions(text)
	rep := Report{Claims: claims}
	if exp.Location != "" {
		v := ByLocation(claims, rows, exp.Location)
		rep.Location = &v
	}
	if exp.Meal != "" {
		v := ByMealType(claims, rows, exp.Meal)
		rep.Meal = &v
	}
	if exp.Allergen != "" {
		v := ByAllergen(claims, rows, exp.Allergen)
		rep.Allergen = &v
	}
	if exp.Diet != "" {
		v := ByDiet(claims, rows, exp.Diet)
		rep.Diet = &v
	}
	return rep
}

// Print writes the checked metrics with two decimals.
func (r Report) Print(w io.Writer) {
	lines := []struct {
		label string
		v     *float64
	}{
		{"Location Accuracy", r.Location},
		{"Meal Type Accuracy", r.Meal},
		{"Allergen Accuracy", r.Allergen},
		{"Food Type Accuracy", r.Diet},
	}
	for _, l := range lines {
		if l.v == nil {
			continue
		}
		fmt.Fprintf(w, "%s: %.2f%%\n", l.label, *l.v)
	}
}
