package cmd

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/ai"
	"mspro-labs/dining-buddy/internal/config"
	"mspro-labs/dining-buddy/internal/dataset"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/models"
)

var rootCmd = &cobra.Command{
	Use:   "dining-buddy",
	Short: "Scrape dining hall menus, score dishes and check meal suggestions",
	Long: `Scrapes the campus dining feed into a scored dish table, asks Gemini for
meal suggestions grounded in that table, and measures how well the
suggestions match it.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// mustLoadConfig returns the env and YAML configuration or exits.
func mustLoadConfig() (config.AppConfig, *config.SiteConfig) {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load site config: %v", err)
	}
	return appCfg, siteCfg
}

func mustConnect(appCfg config.AppConfig) *sql.DB {
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	return database
}

func newAIClient(ctx context.Context, cfg *config.SiteConfig) (*ai.Client, error) {
	return ai.NewClient(ctx, ai.Options{
		Model:          cfg.Suggestion.Model,
		EmbeddingModel: cfg.Suggestion.EmbeddingModel,
		MaxTokens:      cfg.Suggestion.MaxTokens,
		Temperature:    cfg.Suggestion.Temperature,
	})
}

// loadRows reads the table from csvPath when set, otherwise from the database.
func loadRows(appCfg config.AppConfig, csvPath string) ([]models.DishRow, error) {
	if csvPath != "" {
		return dataset.LoadCSV(csvPath)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer database.Close()
	return db.GetActiveRows(database)
}
