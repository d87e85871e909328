package dataset

import (
	"sort"

	"mspro-labs/dining-buddy/internal/models"
)

// Nutrient weights. Protein and fiber count for a dish; sugar, saturated fat,
// sodium and calories count against it. Sodium (mg) and calories are scaled
// down to sit alongside the gram-scale nutrients.
const (
	proteinWeight = 2
	fiberWeight   = 3
	satFatWeight  = -1
	sugarWeight   = -1
	sodiumWeight  = -0.01
	calorieWeight = -0.1
)

// Score computes the nutrient score of row. Scores are not clamped.
func Score(row models.DishRow) float64 {
	return proteinWeight*row.Protein +
		fiberWeight*row.Fiber +
		satFatWeight*row.SaturatedFat +
		sugarWeight*row.Sugar +
		sodiumWeight*row.Sodium +
		calorieWeight*float64(row.Calories)
}

// AddScores returns a copy of rows with NutrientScore filled in.
func AddScores(rows []models.DishRow) []models.DishRow {
	scored := make([]models.DishRow, len(rows))
	for i, row := range rows {
		row.NutrientScore = Score(row)
		scored[i] = row
	}
	return scored
}

// FromDiningInfo builds and scores the table for one ingestion.
func FromDiningInfo(locations []models.LocationMenu) []models.DishRow {
	return AddScores(Build(locations))
}

// SortByScore returns a copy of rows ordered by descending score. Ties keep
// table order.
func SortByScore(rows []models.DishRow) []models.DishRow {
	sorted := append([]models.DishRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NutrientScore > sorted[j].NutrientScore
	})
	return sorted
}
