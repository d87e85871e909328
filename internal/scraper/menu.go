package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"mspro-labs/dining-buddy/internal/models"
)

var logger = log.New(os.Stdout, "SCRAPER: ", log.LstdFlags|log.Lshortfile)

// closedSentinel marks a location that is not serving today.
const closedSentinel = "Closed"

// Source provides the raw dining data. Implementations own all network access.
type Source interface {
	FetchLocations(ctx context.Context) ([]models.Location, error)
	FetchMenu(ctx context.Context, locationID string) (models.RawFeed, error)
}

// Stats counts what an ingestion had to leave out.
type Stats struct {
	Locations       int
	FailedLocations int
	SkippedItems    int
}

// AggregateMenu extracts every category of every meal, keeping meal order,
// then category order, then document order. The returned count is the number
// of items skipped as malformed.
func AggregateMenu(feed models.RawFeed) (models.Menu, int) {
	menu := models.Menu{}
	skipped := 0
	for _, mf := range feed {
		mm := models.MealMenu{Meal: mf.Meal, Dishes: []models.DishRecord{}}
		for _, cat := range mf.Categories {
			dishes, err := ExtractDishes(cat.HTML, mf.Meal)
			if err != nil {
				n := countMalformed(err)
				skipped += n
				logger.Printf("Skipped %d item(s) in %s/%s: %v", n, mf.Meal, cat.Name, err)
			}
			mm.Dishes = append(mm.Dishes, dishes...)
		}
		menu = append(menu, mm)
	}
	return menu, skipped
}

func countMalformed(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}

// IsClosed reports whether either hours field carries the "Closed" sentinel.
func IsClosed(loc models.Location) bool {
	return loc.OpeningHours == closedSentinel || loc.ClosingHours == closedSentinel
}

// FilterOpen drops closed locations, keeping input order.
func FilterOpen(locations []models.Location) []models.Location {
	open := make([]models.Location, 0, len(locations))
	for _, loc := range locations {
		if IsClosed(loc) {
			continue
		}
		open = append(open, loc)
	}
	return open
}

// BuildDiningInfo maps each open location to its aggregated menu. A location
// whose menu cannot be fetched gets an empty menu; it never aborts the batch.
func BuildDiningInfo(ctx context.Context, src Source, locations []models.Location) ([]models.LocationMenu, Stats) {
	open := FilterOpen(locations)
	stats := Stats{Locations: len(open)}

	info := make([]models.LocationMenu, 0, len(open))
	for _, loc := range open {
		feed, err := src.FetchMenu(ctx, loc.ID)
		if err != nil {
			logger.Printf("Menu unavailable for %s: %v", loc.Title, err)
			stats.FailedLocations++
			feed = models.RawFeed{}
		}
		menu, skipped := AggregateMenu(feed)
		stats.SkippedItems += skipped
		info = append(info, models.LocationMenu{Name: loc.Title, Menu: menu})
	}
	return info, stats
}

// GetDiningInfo fetches the location list and builds the menus of every open
// location. Only a failure to load the location list is returned as an error.
func GetDiningInfo(ctx context.Context, src Source) ([]models.LocationMenu, Stats, error) {
	locations, err := src.FetchLocations(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to fetch location list: %w", err)
	}
	logger.Printf("Found %d locations.", len(locations))

	info, stats := BuildDiningInfo(ctx, src, locations)
	return info, stats, nil
}
