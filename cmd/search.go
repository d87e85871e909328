package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/searcher"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search for dishes by description",
	Long: `Uses AI to find dishes that match the semantic meaning of your query.
Examples:
  dining-buddy search "warm and hearty vegetarian soup"
  dining-buddy search "high protein breakfast"

History commands:
  dining-buddy search history
  dining-buddy search clear "query string"
  dining-buddy search clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleSearch(args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func handleSearch(args []string) {
	// 1. Setup
	appCfg, siteCfg := mustLoadConfig()
	database := mustConnect(appCfg)
	defer database.Close()

	command := strings.ToLower(args[0])

	// 2. Commands
	if command == "history" {
		entries, err := db.ListSearchHistory(database)
		if err != nil {
			log.Fatalf("Failed to list history: %v", err)
		}
		fmt.Println("📜 Search History (Cached Queries)")
		fmt.Println("------------------------------------")
		if len(entries) == 0 {
			fmt.Println("No history found.")
			return
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.QueryText)
		}
		return
	}

	if command == "clear" {
		if len(args) < 2 {
			log.Fatal("Usage: dining-buddy search clear \"query text\" (or 'all')")
		}
		target := strings.TrimSpace(strings.Join(args[1:], " "))
		var affected int64
		var err error

		if strings.ToLower(target) == "all" {
			affected, err = db.ClearAllSearchHistory(database)
		} else {
			affected, err = db.ClearSearchHistory(database, target)
		}

		if err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Printf("🗑️ Done. Removed %d entry(s) from cache.\n", affected)
		return
	}

	// 3. Perform regular search
	ctx := context.Background()
	aiClient, err := newAIClient(ctx, siteCfg)
	if err != nil {
		log.Fatalf("Failed to init AI: %v", err)
	}
	defer aiClient.Close()

	query := strings.Join(args, " ")
	results, err := searcher.Perform(ctx, database, aiClient, query)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	fmt.Printf("\n🔍 Top matches for: \"%s\"\n\n", query)
	if len(results) == 0 {
		fmt.Println("No embedded dishes yet. Run 'dining-buddy embed' first.")
		return
	}
	for i, r := range results {
		fmt.Printf("#%d [%.1f%% match] %s (%s, %s)\n", i+1, r.Score*100, r.Item.DishName, r.Item.Location, r.Item.Meal)
		if r.Item.Allergens != "" {
			fmt.Printf("   Allergens: %s\n", r.Item.Allergens)
		}
		fmt.Printf("   Nutrient score: %.2f\n\n", r.Item.Score)
	}
}
