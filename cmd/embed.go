package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new dishes",
	Long:  `Finds active dishes in the database that are missing semantic vectors and generates them using the Gemini API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx := context.Background()

	// 1. Config & DB
	appCfg, siteCfg := mustLoadConfig()
	database := mustConnect(appCfg)
	defer database.Close()

	// 2. Initialize AI
	aiClient, err := newAIClient(ctx, siteCfg)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	// 3. Run Shared Embedder Logic
	// Rate limit for free tier safety (approx 60 RPM max)
	if _, err := embedder.Run(ctx, database, aiClient, time.Second); err != nil {
		log.Fatalf("Embedding process failed: %v", err)
	}
}
