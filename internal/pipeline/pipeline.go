package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mspro-labs/dining-buddy/internal/dataset"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/models"
	"mspro-labs/dining-buddy/internal/scraper"
)

// Result is the output of one ingestion cycle.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Locations  []models.LocationMenu
	Rows       []models.DishRow
	Stats      scraper.Stats
}

// Run scrapes every open location from src and returns the scored table.
func Run(ctx context.Context, src scraper.Source) (Result, error) {
	res := Result{RunID: uuid.NewString(), StartedAt: time.Now()}

	info, stats, err := scraper.GetDiningInfo(ctx, src)
	if err != nil {
		return Result{}, err
	}
	res.Locations = info
	res.Stats = stats
	res.Rows = dataset.FromDiningInfo(info)
	res.FinishedAt = time.Now()
	return res, nil
}

// Persist replaces the active table with res.Rows and records the run. On a
// failed save the previous table stays active.
func Persist(database *sql.DB, res Result) (int64, error) {
	count, err := db.ReplaceActiveRows(database, res.RunID, res.Rows)
	if err != nil {
		return 0, fmt.Errorf("failed to save rows: %w", err)
	}
	run := db.Run{
		ID:              res.RunID,
		StartedAt:       res.StartedAt,
		FinishedAt:      res.FinishedAt,
		Locations:       res.Stats.Locations,
		FailedLocations: res.Stats.FailedLocations,
		SkippedItems:    res.Stats.SkippedItems,
		Dishes:          len(res.Rows),
	}
	if err := db.RecordRun(database, run); err != nil {
		return count, err
	}
	return count, nil
}
