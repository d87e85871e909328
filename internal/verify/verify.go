package verify

import (
	"strings"

	"mspro-labs/dining-buddy/internal/models"
)

// ByLocation is the percentage of claims served at location.
func ByLocation(claims []Claim, rows []models.DishRow, location string) float64 {
	return percentMatching(claims, rows, func(r models.DishRow) bool {
		return r.Location == location
	})
}

// ByMealType is the percentage of claims served at meal (display form, e.g. "Dinner").
func ByMealType(claims []Claim, rows []models.DishRow, meal string) float64 {
	return percentMatching(claims, rows, func(r models.DishRow) bool {
		return r.Meal == meal
	})
}

// ByAllergen is the percentage of claims not confirmed to contain allergen.
// A claim whose dish is not in the table at all counts as compliant.
func ByAllergen(claims []Claim, rows []models.DishRow, allergen string) float64 {
	if len(claims) == 0 {
		return 0
	}
	return 100 - percentMatching(claims, rows, func(r models.DishRow) bool {
		return containsFold(r.Allergens, allergen)
	})
}

// ByDiet is the percentage of claims tagged with diet.
func ByDiet(claims []Claim, rows []models.DishRow, diet string) float64 {
	return percentMatching(claims, rows, func(r models.DishRow) bool {
		return containsFold(r.Diets, diet)
	})
}

// percentMatching counts claims with at least one row of the same dish name
// satisfying match. No claims yields 0.
func percentMatching(claims []Claim, rows []models.DishRow, match func(models.DishRow) bool) float64 {
	if len(claims) == 0 {
		return 0
	}
	matched := 0
	for _, c := range claims {
		for _, r := range rows {
			if r.DishName == c.DishName && match(r) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(claims)) * 100
}

// containsFold is a case-insensitive substring test. An empty field never
// matches.
func containsFold(field, sub string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}
