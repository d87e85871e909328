package searcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"mspro-labs/dining-buddy/internal/ai"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/embedder"
)

// TopN is the number of matches returned by Perform.
const TopN = 5

// Result holds a single search match.
type Result struct {
	Item  db.DishVector
	Score float32
}

// Perform executes a semantic search over the active dishes.
func Perform(ctx context.Context, database *sql.DB, emb embedder.Embedder, queryText string) ([]Result, error) {
	// 1. Get Query Vector (Try cache first, then AI)
	queryVector, err := getQueryVector(ctx, database, emb, queryText)
	if err != nil {
		return nil, err
	}

	// 2. Load all dish vectors
	dishes, err := db.GetDishVectors(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load dishes: %w", err)
	}

	// 3. Compare and score
	var results []Result
	for _, dish := range dishes {
		dishFloats, err := ai.BytesToFloats(dish.Vector)
		if err != nil {
			continue
		}
		score := ai.CosineSimilarity(queryVector, dishFloats)
		results = append(results, Result{Item: dish, Score: score})
	}

	// 4. Sort by descending similarity; equal matches rank the healthier dish first
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Score > results[j].Item.Score
	})

	if len(results) > TopN {
		results = results[:TopN]
	}

	return results, nil
}

// getQueryVector handles the "cache-aside" logic for query embeddings.
func getQueryVector(ctx context.Context, database *sql.DB, emb embedder.Embedder, text string) ([]float32, error) {
	// A. Try Cache
	blob, err := db.GetCachedQuery(database, text)
	if err == nil {
		// Cache hit
		return ai.BytesToFloats(blob)
	}

	// B. Cache Miss - Use AI
	log.Printf("🤖 Cache miss for '%s'. Calling Gemini...", text)
	blob, floats, err := emb.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// C. Save to Cache (don't fail the request if cache save fails)
	if err := db.SaveCachedQuery(database, text, blob); err != nil {
		log.Printf("Warning: failed to save query to cache: %v", err)
	}

	return floats, nil
}
