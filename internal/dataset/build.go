package dataset

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"mspro-labs/dining-buddy/internal/models"
)

// Build flattens locations into rows: location order, then meal order as the
// feed listed them, then dish order. NutrientScore is left zero; see Score.
func Build(locations []models.LocationMenu) []models.DishRow {
	var rows []models.DishRow
	for _, loc := range locations {
		for _, mm := range loc.Menu {
			meal := capitalize(mm.Meal)
			for _, d := range mm.Dishes {
				rows = append(rows, newRow(loc.Name, meal, d))
			}
		}
	}
	return rows
}

func newRow(location, meal string, d models.DishRecord) models.DishRow {
	row := models.DishRow{
		Location:     location,
		Meal:         meal,
		DishName:     d.Name,
		Calories:     d.Calories,
		Diets:        strings.Join(d.Diets, ", "),
		Allergens:    strings.Join(d.Allergens, ", "),
		Protein:      d.Protein,
		Fiber:        orZero(d.Fiber),
		Sugar:        orZero(d.Sugar),
		SaturatedFat: orZero(d.SaturatedFat),
		Sodium:       orZero(d.Sodium),
	}
	if d.Cost.Known {
		cost := d.Cost.Value
		row.Cost = &cost
	}
	return row
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
