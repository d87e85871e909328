package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/dining-buddy/internal/models"
)

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MarkAllAsInactive sets is_active=0 for all dishes.
// ReplaceActiveRows runs it in the same transaction as the upserts so that only
// dishes on the current menus stay active.
func MarkAllAsInactive(db execer) error {
	_, err := db.ExecContext(context.Background(), `UPDATE dish SET is_active = 0 WHERE is_active = 1;`)
	if err != nil {
		return fmt.Errorf("failed to mark dishes as inactive: %w", err)
	}
	return nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	if err := dropLegacyDishTable(db); err != nil {
		return err
	}

	// Scored dish table. occurrence numbers repeated names within one
	// (location, meal) so every table row is stored.
	dishTable := `
	CREATE TABLE IF NOT EXISTS dish (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  location TEXT NOT NULL,
	  meal TEXT NOT NULL,
	  dish_name TEXT NOT NULL,
	  occurrence INTEGER NOT NULL DEFAULT 0,
	  cost REAL,
	  calories INTEGER NOT NULL,
	  diets TEXT,
	  allergens TEXT,
	  protein REAL NOT NULL DEFAULT 0,
	  fiber REAL NOT NULL DEFAULT 0,
	  sugar REAL NOT NULL DEFAULT 0,
	  saturated_fat REAL NOT NULL DEFAULT 0,
	  sodium REAL NOT NULL DEFAULT 0,
	  nutrient_score REAL NOT NULL,
	  position INTEGER NOT NULL,
	  run_id TEXT,
	  first_scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  is_active INTEGER DEFAULT 1,
	  embedding BLOB,
	  UNIQUE (location, meal, dish_name, occurrence)
	);
	CREATE INDEX IF NOT EXISTS idx_dish_active ON dish(is_active, position);
	`
	if _, err := db.Exec(dishTable); err != nil {
		return err
	}

	// One row per ingestion
	runsTable := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
	  id TEXT PRIMARY KEY,
	  started_at TIMESTAMP NOT NULL,
	  finished_at TIMESTAMP NOT NULL,
	  locations INTEGER NOT NULL,
	  failed_locations INTEGER NOT NULL,
	  skipped_items INTEGER NOT NULL,
	  dishes INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(runsTable); err != nil {
		return err
	}

	// Search History Table (for local caching of AI queries)
	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query_text TEXT PRIMARY KEY,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	return nil
}

// dropLegacyDishTable removes a dish table created before the occurrence
// column existed. The table is rebuilt by the next scrape.
func dropLegacyDishTable(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(dish)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns := 0
	hasOccurrence := false
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		columns++
		if name == "occurrence" {
			hasOccurrence = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if columns == 0 || hasOccurrence {
		return nil
	}
	log.Println("Dropping dish table with the old unique key; run scrape to rebuild it.")
	_, err = db.Exec(`DROP TABLE dish`)
	return err
}

// ReplaceActiveRows makes rows the whole active table: the inactive sweep and
// the upserts commit together, so a failed save leaves the previous table
// active.
func ReplaceActiveRows(db *sql.DB, runID string, rows []models.DishRow) (int64, error) {
	return saveRows(db, runID, rows, true)
}

// SaveRows performs a batch UPSERT of scored rows, marking them active and
// recording their table position. A stored embedding survives unless the
// dish's diets or allergens changed.
func SaveRows(db *sql.DB, runID string, rows []models.DishRow) (int64, error) {
	return saveRows(db, runID, rows, false)
}

func saveRows(db *sql.DB, runID string, rows []models.DishRow, sweep bool) (int64, error) {
	upsertSQL := `
	INSERT INTO dish (
	  location, meal, dish_name, occurrence, cost, calories, diets, allergens,
	  protein, fiber, sugar, saturated_fat, sodium, nutrient_score,
	  position, run_id, last_seen_at, is_active
	) VALUES (
	  ?, ?, ?, ?, ?, ?, ?, ?,
	  ?, ?, ?, ?, ?, ?,
	  ?, ?, CURRENT_TIMESTAMP, 1
	) ON CONFLICT(location, meal, dish_name, occurrence) DO UPDATE SET
	  embedding = CASE
	    WHEN dish.diets IS excluded.diets AND dish.allergens IS excluded.allergens THEN dish.embedding
	    ELSE NULL
	  END,
	  cost = excluded.cost,
	  calories = excluded.calories,
	  diets = excluded.diets,
	  allergens = excluded.allergens,
	  protein = excluded.protein,
	  fiber = excluded.fiber,
	  sugar = excluded.sugar,
	  saturated_fat = excluded.saturated_fat,
	  sodium = excluded.sodium,
	  nutrient_score = excluded.nutrient_score,
	  position = excluded.position,
	  run_id = excluded.run_id,
	  last_seen_at = CURRENT_TIMESTAMP,
	  is_active = 1;
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	if sweep {
		if err := MarkAllAsInactive(tx); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	type dishKey struct{ location, meal, name string }
	seen := make(map[dishKey]int)

	var totalAffected int64 = 0
	for i, r := range rows {
		key := dishKey{r.Location, r.Meal, r.DishName}
		occurrence := seen[key]
		seen[key]++

		var cost sql.NullFloat64
		if r.Cost != nil {
			cost = sql.NullFloat64{Float64: *r.Cost, Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			r.Location,
			r.Meal,
			r.DishName,
			occurrence,
			cost,
			r.Calories,
			sql.NullString{String: r.Diets, Valid: r.Diets != ""},
			sql.NullString{String: r.Allergens, Valid: r.Allergens != ""},
			r.Protein,
			r.Fiber,
			r.Sugar,
			r.SaturatedFat,
			r.Sodium,
			r.NutrientScore,
			i,
			runID,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to upsert %s / %s: %w", r.Location, r.DishName, err)
		}
		n, _ := res.RowsAffected()
		totalAffected += n
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return totalAffected, nil
}

// GetActiveRows returns the current table in ingestion order.
func GetActiveRows(db *sql.DB) ([]models.DishRow, error) {
	rows, err := db.Query(`
		SELECT location, meal, dish_name, cost, calories, diets, allergens,
		       protein, fiber, sugar, saturated_fat, sodium, nutrient_score
		FROM dish
		WHERE is_active = 1
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DishRow
	for rows.Next() {
		var r models.DishRow
		var cost sql.NullFloat64
		var diets, allergens sql.NullString
		if err := rows.Scan(&r.Location, &r.Meal, &r.DishName, &cost, &r.Calories, &diets, &allergens,
			&r.Protein, &r.Fiber, &r.Sugar, &r.SaturatedFat, &r.Sodium, &r.NutrientScore); err != nil {
			return nil, err
		}
		if cost.Valid {
			v := cost.Float64
			r.Cost = &v
		}
		r.Diets = diets.String
		r.Allergens = allergens.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Ingestion runs ---

type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Locations       int
	FailedLocations int
	SkippedItems    int
	Dishes          int
}

// RecordRun stores the summary of one ingestion.
func RecordRun(db *sql.DB, run Run) error {
	_, err := db.Exec(`
		INSERT INTO ingest_runs (id, started_at, finished_at, locations, failed_locations, skipped_items, dishes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Locations, run.FailedLocations, run.SkippedItems, run.Dishes)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recent ingestion, or sql.ErrNoRows.
func LatestRun(db *sql.DB) (Run, error) {
	var r Run
	err := db.QueryRow(`
		SELECT id, started_at, finished_at, locations, failed_locations, skipped_items, dishes
		FROM ingest_runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Locations, &r.FailedLocations, &r.SkippedItems, &r.Dishes)
	return r, err
}

// --- Embedding & Search Helpers ---

// GetUnembeddedDishes returns a map of dish id -> text to embed for active
// dishes missing embeddings.
func GetUnembeddedDishes(db *sql.DB) (map[int64]string, error) {
	rows, err := db.Query(`
		SELECT id, dish_name, location, meal, diets, allergens
		FROM dish WHERE is_active = 1 AND embedding IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name, location, meal string
		var diets, allergens sql.NullString
		if err := rows.Scan(&id, &name, &location, &meal, &diets, &allergens); err != nil {
			return nil, err
		}
		results[id] = EmbeddingText(name, location, meal, diets.String, allergens.String)
	}
	return results, rows.Err()
}

// EmbeddingText is the document embedded for a dish.
func EmbeddingText(name, location, meal, diets, allergens string) string {
	if diets == "" {
		diets = "none"
	}
	if allergens == "" {
		allergens = "none"
	}
	return fmt.Sprintf("Dish: %s\nLocation: %s\nMeal: %s\nDiets: %s\nAllergens: %s", name, location, meal, diets, allergens)
}

// UpdateEmbedding saves the generated vector blob for a dish.
func UpdateEmbedding(db *sql.DB, id int64, embedding []byte) error {
	_, err := db.Exec("UPDATE dish SET embedding = ? WHERE id = ?", embedding, id)
	return err
}

// DishVector is an active dish with its embedding, for search.
type DishVector struct {
	ID        int64
	Location  string
	Meal      string
	DishName  string
	Diets     string
	Allergens string
	Score     float64
	Vector    []byte
}

// GetDishVectors returns all active dishes that have embeddings.
func GetDishVectors(db *sql.DB) ([]DishVector, error) {
	rows, err := db.Query(`
		SELECT id, location, meal, dish_name, diets, allergens, nutrient_score, embedding
		FROM dish WHERE is_active = 1 AND embedding IS NOT NULL
		ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DishVector
	for rows.Next() {
		var dv DishVector
		var diets, allergens sql.NullString
		if err := rows.Scan(&dv.ID, &dv.Location, &dv.Meal, &dv.DishName, &diets, &allergens, &dv.Score, &dv.Vector); err != nil {
			return nil, fmt.Errorf("failed to read dish vector: %w", err)
		}
		dv.Diets = diets.String
		dv.Allergens = allergens.String
		results = append(results, dv)
	}
	return results, rows.Err()
}

// GetCachedQuery tries to find a previously searched query vector.
func GetCachedQuery(db *sql.DB, text string) ([]byte, error) {
	var blob []byte
	err := db.QueryRow("SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a new query and its vector to the history table.
func SaveCachedQuery(db *sql.DB, text string, blob []byte) error {
	_, err := db.Exec("INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)", text, blob)
	return err
}

// --- History Management for search ---

type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func ListSearchHistory(db *sql.DB) ([]HistoryEntry, error) {
	rows, err := db.Query("SELECT query_text, created_at FROM search_history ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.QueryText, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearSearchHistory removes a specific query from the cache.
func ClearSearchHistory(db *sql.DB, queryText string) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history WHERE query_text = ?", queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire cache.
func ClearAllSearchHistory(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
