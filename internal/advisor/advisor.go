package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"mspro-labs/dining-buddy/internal/models"
)

var logger = log.New(os.Stdout, "ADVISOR: ", log.LstdFlags|log.Lshortfile)

const (
	mealSystemPrompt    = "You are a helpful assistant."
	nearestSystemPrompt = "You are a helpful assistant that helps users locate dining halls."
)

// Generator produces model text for a system instruction and a prompt.
// *ai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Preferences is what the user asked for.
type Preferences struct {
	Diet      string
	Location  string
	Allergens string
	At        time.Time
}

// Suggestion is the model's answer and how it was obtained.
type Suggestion struct {
	Text     string
	Location string
	// Nearest is true when Location came from the nearest-hall fallback
	// because no dish matched the requested location.
	Nearest bool
	// Grounding holds the rows the meal prompt was built from.
	Grounding []models.DishRow
}

// Advisor asks the model for meals grounded in the dish table.
type Advisor struct {
	gen    Generator
	campus string
}

func New(gen Generator, campus string) *Advisor {
	return &Advisor{gen: gen, campus: campus}
}

// Suggest filters rows by the requested location and asks for meals. When no
// row matches, the model first picks the nearest dining hall from the table's
// locations and the meal prompt then uses every row.
func (a *Advisor) Suggest(ctx context.Context, rows []models.DishRow, p Preferences) (Suggestion, error) {
	filtered := FilterByLocation(rows, p.Location)
	if len(filtered) > 0 {
		text, err := a.meals(ctx, filtered, p.Diet, p.Location, p.Allergens, p.At)
		if err != nil {
			return Suggestion{}, err
		}
		return Suggestion{Text: text, Location: p.Location, Grounding: filtered}, nil
	}

	logger.Printf("No meals found for %q, asking for the nearest dining hall", p.Location)
	prompt := NearestPrompt(UniqueLocations(rows), p.Location, a.campus)
	nearest, err := a.gen.Generate(ctx, nearestSystemPrompt, prompt)
	if err != nil {
		return Suggestion{}, fmt.Errorf("nearest dining hall: %w", err)
	}
	nearest = strings.TrimSpace(nearest)
	logger.Printf("Nearest dining hall: %s", nearest)

	text, err := a.meals(ctx, rows, p.Diet, nearest, p.Allergens, p.At)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{Text: text, Location: nearest, Nearest: true, Grounding: rows}, nil
}

func (a *Advisor) meals(ctx context.Context, rows []models.DishRow, diet, location, allergens string, at time.Time) (string, error) {
	prompt, err := MealPrompt(rows, diet, location, allergens, a.campus, at)
	if err != nil {
		return "", err
	}
	text, err := a.gen.Generate(ctx, mealSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("meal suggestions: %w", err)
	}
	return strings.Trim(text, "* "), nil
}

// promptDish is the slice of a row shown to the model.
type promptDish struct {
	DishName string `json:"Dish Name"`
	Location string `json:"Location"`
	Meal     string `json:"Meal"`
}

// MealPrompt asks for five meals for the diet at location, avoiding
// allergens, for the meal period that fits the local time. A zero at leaves
// the time for the model to assume.
func MealPrompt(rows []models.DishRow, diet, location, allergens, campus string, at time.Time) (string, error) {
	dishes := make([]promptDish, len(rows))
	for i, r := range rows {
		dishes[i] = promptDish{DishName: r.DishName, Location: r.Location, Meal: r.Meal}
	}
	data, err := json.Marshal(dishes)
	if err != nil {
		return "", fmt.Errorf("failed to encode meal data: %w", err)
	}

	when := "the current time in " + campus
	if !at.IsZero() {
		when = fmt.Sprintf("the current time: %s in %s", at.Format("15:04:05"), campus)
	}
	return fmt.Sprintf(
		"Based on the following meal data and %s:\n%s\n"+
			"Suggest 5 meals suitable for a %s diet available at %s, avoiding %s allergens "+
			"for the current suitable meal category according to the current time in %s.",
		when, data, diet, location, allergens, campus,
	), nil
}

// NearestPrompt asks the model to name the one dining hall closest to where.
func NearestPrompt(locations []string, where, campus string) string {
	data, _ := json.Marshal(locations)
	return fmt.Sprintf(
		"I am currently at %s in %s. Based on the following dining hall locations:\n%s\n"+
			"Please identify the nearest dining hall to my location and name only one dining hall just the name no other sentence.",
		where, campus, data,
	)
}

// FilterByLocation keeps rows whose location contains location, ignoring case.
func FilterByLocation(rows []models.DishRow, location string) []models.DishRow {
	needle := strings.ToLower(location)
	var out []models.DishRow
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Location), needle) {
			out = append(out, r)
		}
	}
	return out
}

// KeepLocations keeps rows at one of the named locations. No names keeps all.
func KeepLocations(rows []models.DishRow, names []string) []models.DishRow {
	if len(names) == 0 {
		return rows
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	var out []models.DishRow
	for _, r := range rows {
		if keep[r.Location] {
			out = append(out, r)
		}
	}
	return out
}

// UniqueLocations lists row locations in first-seen order.
func UniqueLocations(rows []models.DishRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Location] {
			seen[r.Location] = true
			out = append(out, r.Location)
		}
	}
	return out
}

// MealForTime maps a local time to the display meal period it falls in.
func MealForTime(t time.Time) string {
	switch h := t.Hour(); {
	case h < 11:
		return "Breakfast"
	case h < 16:
		return "Lunch"
	default:
		return "Dinner"
	}
}
