package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/dining-buddy/internal/api"
	"mspro-labs/dining-buddy/internal/embedder"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Serves the active dish table and the verification checks:
  GET  /api/dishes?location=&meal=
  GET  /api/search?q=
  POST /api/verify  {"text": "...", "location": "...", "meal": "...", "allergen": "...", "diet": "..."}`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	// 1. Setup
	appCfg, siteCfg := mustLoadConfig()
	database := mustConnect(appCfg)
	defer database.Close()

	// 2. Initialize AI
	// We need this alive as long as the server is running. Without it only
	// search is unavailable.
	var emb embedder.Embedder
	aiClient, err := newAIClient(context.Background(), siteCfg)
	if err != nil {
		log.Printf("⚠️ Warning: search disabled: %v", err)
	} else {
		defer aiClient.Close()
		emb = aiClient
	}

	// 3. Start Server
	log.Printf("🌐 API started at http://localhost%s", serveAddr)
	server := &http.Server{
		Addr:         serveAddr,
		Handler:      api.New(database, emb).Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
