package embedder

import (
	"context"
	"database/sql"
	"log"
	"time"

	"mspro-labs/dining-buddy/internal/db"
)

// Embedder turns text into a stored blob and its raw vector. *ai.Client
// satisfies it.
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]byte, []float32, error)
}

// Run finds all active dishes missing embeddings and processes them, pausing
// delay between calls for rate limiting. It returns how many were embedded.
func Run(ctx context.Context, database *sql.DB, emb Embedder, delay time.Duration) (int, error) {
	// 1. Find work to do
	targets, err := db.GetUnembeddedDishes(database)
	if err != nil {
		return 0, err
	}

	if len(targets) == 0 {
		log.Println("✨ All active dishes are already embedded.")
		return 0, nil
	}
	log.Printf("Found %d new dishes to embed...", len(targets))

	// 2. Process loop
	count := 0
	for id, textToEmbed := range targets {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		blob, _, err := emb.EmbedString(ctx, textToEmbed)
		if err != nil {
			log.Printf("⚠️ Error embedding dish %d: %v", id, err)
			time.Sleep(delay) // Backoff on error
			continue
		}

		if err := db.UpdateEmbedding(database, id, blob); err != nil {
			log.Printf("⚠️ Error saving to DB: %v", err)
			continue
		}

		count++
		time.Sleep(delay)
	}

	log.Printf("🎉 Successfully embedded %d dishes.", count)
	return count, nil
}
