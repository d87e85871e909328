package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/advisor"
	"mspro-labs/dining-buddy/internal/verify"
)

var (
	suggestDiet      string
	suggestLocation  string
	suggestAllergens string
	suggestMeal      string
	suggestCSV       string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask Gemini for meals and verify them against the dish table",
	Long: `Builds a prompt from the dining commons' dishes, asks Gemini for five meals,
then reports how many suggestions are at the location, in the current meal,
free of the allergen and tagged with the diet.

Missing flags are asked for interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSuggest()
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestDiet, "diet", "", "food type, e.g. Vegan")
	suggestCmd.Flags().StringVar(&suggestLocation, "location", "", "dining hall or place you are at")
	suggestCmd.Flags().StringVar(&suggestAllergens, "allergens", "", "allergen to avoid, e.g. Gluten")
	suggestCmd.Flags().StringVar(&suggestMeal, "meal", "", "expected meal (default: from the current time)")
	suggestCmd.Flags().StringVar(&suggestCSV, "csv", "", "read the table from this CSV instead of the database")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest() {
	ctx := context.Background()
	appCfg, siteCfg := mustLoadConfig()

	in := bufio.NewReader(os.Stdin)
	ask(in, &suggestDiet, "What food type do you want? (e.g., Vegan): ")
	ask(in, &suggestLocation, "Which is your location: ")
	ask(in, &suggestAllergens, "Do you have any allergens? (e.g., Gluten): ")

	rows, err := loadRows(appCfg, suggestCSV)
	if err != nil {
		log.Fatalf("Failed to load dishes: %v", err)
	}
	rows = advisor.KeepLocations(rows, siteCfg.DiningCommons)
	if len(rows) == 0 {
		log.Fatal("No dishes available. Run 'dining-buddy scrape' first.")
	}

	now, err := localNow(siteCfg.Suggestion.TimeZone)
	if err != nil {
		log.Fatalf("Failed to resolve campus time: %v", err)
	}

	aiClient, err := newAIClient(ctx, siteCfg)
	if err != nil {
		log.Fatalf("Failed to initialize AI: %v", err)
	}
	defer aiClient.Close()

	adv := advisor.New(aiClient, siteCfg.Suggestion.Campus)
	sug, err := adv.Suggest(ctx, rows, advisor.Preferences{
		Diet:      suggestDiet,
		Location:  suggestLocation,
		Allergens: suggestAllergens,
		At:        now,
	})
	if err != nil {
		log.Fatalf("Suggestion failed: %v", err)
	}

	if sug.Nearest {
		fmt.Printf("\nNo meals found for your location. Nearest dining hall: %s\n", sug.Location)
	}
	fmt.Println("\nMeal Suggestions:")
	fmt.Println()
	fmt.Println(sug.Text)
	fmt.Println()

	exp := verify.Expectations{
		Location: sug.Location,
		Meal:     suggestMeal,
		Allergen: suggestAllergens,
		Diet:     suggestDiet,
	}
	if locs := advisor.UniqueLocations(sug.Grounding); len(locs) == 1 {
		exp.Location = locs[0]
	}
	if exp.Meal == "" {
		exp.Meal = advisor.MealForTime(now)
	}
	verify.Check(sug.Text, rows, exp).Print(os.Stdout)
}

// localNow is the current time in the named zone.
func localNow(zone string) (time.Time, error) {
	tz, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time zone %q: %w", zone, err)
	}
	return time.Now().In(tz), nil
}

// ask prompts on stdout when *dst is still empty.
func ask(in *bufio.Reader, dst *string, prompt string) {
	if *dst != "" {
		return
	}
	fmt.Print(prompt)
	line, _ := in.ReadString('\n')
	*dst = strings.TrimSpace(line)
}
