package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/dataset"
	"mspro-labs/dining-buddy/internal/embedder"
	"mspro-labs/dining-buddy/internal/pipeline"
	"mspro-labs/dining-buddy/internal/scraper"
)

var (
	scrapeCSV   string
	scrapeTop   int
	scrapeEmbed bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape today's menus into the scored dish table",
	Long: `Fetches every open dining location, extracts and scores its dishes, replaces
the active table in the local database, exports it as CSV, and embeds new
dishes for search.`,
	Run: func(cmd *cobra.Command, args []string) {
		runScrape()
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCSV, "csv", "", "CSV export path (default $CSV_PATH or dining_info_scores.csv)")
	scrapeCmd.Flags().IntVar(&scrapeTop, "top", 10, "print the N best scoring dishes")
	scrapeCmd.Flags().BoolVar(&scrapeEmbed, "embed", true, "embed new dishes after saving")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape() {
	ctx := context.Background()

	// 1. Load Config
	appCfg, siteCfg := mustLoadConfig()
	if scrapeCSV == "" {
		scrapeCSV = appCfg.CSVPath
	}

	// 2. Build the feed source
	src, closeSrc, err := scraper.NewSource(siteCfg)
	if err != nil {
		log.Fatalf("Failed to create source: %v", err)
	}
	defer closeSrc()

	// 3. Run the pipeline
	res, err := pipeline.Run(ctx, src)
	if err != nil {
		log.Fatalf("Scraping failed: %v", err)
	}
	log.Printf("Run %s: %d open locations (%d failed), %d dishes, %d items skipped.",
		res.RunID, res.Stats.Locations, res.Stats.FailedLocations, len(res.Rows), res.Stats.SkippedItems)

	if len(res.Rows) == 0 {
		log.Println("No dishes to save. Exiting.")
		return
	}

	// 4. Save to DB
	database := mustConnect(appCfg)
	defer database.Close()

	count, err := pipeline.Persist(database, res)
	if err != nil {
		log.Fatalf("Failed to save data: %v", err)
	}
	log.Printf("SUCCESS: Upserted %d records.", count)

	// 5. Export CSV
	if err := dataset.SaveCSV(scrapeCSV, res.Rows); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Dataset saved as '%s'", scrapeCSV)

	printTop(dataset.SortByScore(res.Rows), scrapeTop)

	if !scrapeEmbed {
		return
	}

	// 6. Auto-run Embedder
	log.Println("🤖 Starting automatic embedding...")
	aiClient, err := newAIClient(ctx, siteCfg)
	if err != nil {
		log.Printf("⚠️ Warning: Could not initialize AI for auto-embedding (check GEMINI_API_KEY): %v", err)
		return // Don't fail the whole scrape if AI fails
	}
	defer aiClient.Close()

	if _, err := embedder.Run(ctx, database, aiClient, time.Second); err != nil {
		log.Printf("⚠️ Warning: Auto-embedding failed: %v", err)
	}
}
