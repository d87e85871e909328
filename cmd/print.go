package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"mspro-labs/dining-buddy/internal/models"
)

func printTop(rows []models.DishRow, n int) {
	if n <= 0 || len(rows) == 0 {
		return
	}
	if n > len(rows) {
		n = len(rows)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tLOCATION\tMEAL\tDISH\tKCAL\tALLERGENS")
	for _, r := range rows[:n] {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%d\t%s\n", r.NutrientScore, r.Location, r.Meal, r.DishName, r.Calories, r.Allergens)
	}
	tw.Flush()
}
