package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mspro-labs/dining-buddy/internal/models"
)

type call struct {
	system string
	prompt string
}

type fakeGenerator struct {
	replies []string
	calls   []call
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.calls = append(f.calls, call{system, prompt})
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func sampleRows() []models.DishRow {
	return []models.DishRow{
		{Location: "Franklin Dining Commons", Meal: "Dinner", DishName: "Grilled Chicken"},
		{Location: "Worcester Commons", Meal: "Lunch", DishName: "Tofu Stir Fry"},
		{Location: "Franklin Dining Commons", Meal: "Lunch", DishName: "Lentil Soup"},
		{Location: "Blue Wall", Meal: "Lunch", DishName: "Wrap"},
	}
}

func TestSuggestAtLocation(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"** 1. Lentil Soup - hearty\n2. Grilled Chicken **"}}
	adv := New(gen, "Amherst, MA, USA")

	at := time.Date(2026, 10, 14, 18, 30, 0, 0, time.UTC)
	sug, err := adv.Suggest(context.Background(), sampleRows(), Preferences{Diet: "Vegan", Location: "franklin", Allergens: "Gluten", At: at})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sug.Nearest {
		t.Error("did not expect the nearest-hall fallback")
	}
	if sug.Text != "1. Lentil Soup - hearty\n2. Grilled Chicken" {
		t.Errorf("suggestion should be trimmed of stars and spaces, got %q", sug.Text)
	}
	if len(sug.Grounding) != 2 {
		t.Errorf("expected 2 grounding rows, got %d", len(sug.Grounding))
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(gen.calls))
	}
	p := gen.calls[0].prompt
	for _, want := range []string{"Lentil Soup", "Vegan diet", "available at franklin", "avoiding Gluten", "18:30:00"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "Tofu Stir Fry") {
		t.Error("prompt should only list dishes at the requested location")
	}
}

func TestSuggestNearestFallback(t *testing.T) {
	gen := &fakeGenerator{replies: []string{" Worcester Commons\n", "1. Tofu Stir Fry"}}
	adv := New(gen, "Amherst, MA, USA")

	sug, err := adv.Suggest(context.Background(), sampleRows(), Preferences{Diet: "Vegan", Location: "Southwest Residential Area"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if !sug.Nearest || sug.Location != "Worcester Commons" {
		t.Errorf("expected fallback to Worcester Commons, got %+v", sug)
	}
	if len(gen.calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(gen.calls))
	}
	if gen.calls[0].system != nearestSystemPrompt {
		t.Errorf("first call should ask for the nearest hall, got system %q", gen.calls[0].system)
	}
	if !strings.Contains(gen.calls[0].prompt, `["Franklin Dining Commons","Worcester Commons","Blue Wall"]`) {
		t.Errorf("nearest prompt should list unique locations:\n%s", gen.calls[0].prompt)
	}
	if !strings.Contains(gen.calls[1].prompt, "available at Worcester Commons") {
		t.Errorf("meal prompt should target the nearest hall:\n%s", gen.calls[1].prompt)
	}
	if len(sug.Grounding) != 4 {
		t.Errorf("fallback should ground on every row, got %d", len(sug.Grounding))
	}
}

func TestSuggestGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := New(gen, "Amherst").Suggest(context.Background(), sampleRows(), Preferences{Location: "Franklin"})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected wrapped generator error, got %v", err)
	}
}

func TestMealPromptWithoutTime(t *testing.T) {
	p, err := MealPrompt(nil, "Halal", "Hampshire", "Dairy", "Amherst, MA, USA", time.Time{})
	if err != nil {
		t.Fatalf("MealPrompt failed: %v", err)
	}
	if !strings.HasPrefix(p, "Based on the following meal data and the current time in Amherst, MA, USA:\n[]") {
		t.Errorf("unexpected prompt: %s", p)
	}
}

func TestKeepLocations(t *testing.T) {
	rows := KeepLocations(sampleRows(), []string{"Franklin Dining Commons", "Worcester Commons"})
	if len(rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(rows))
	}
	if got := KeepLocations(sampleRows(), nil); len(got) != 4 {
		t.Errorf("no names should keep all rows, got %d", len(got))
	}
}

func TestMealForTime(t *testing.T) {
	testCases := []struct {
		hour     int
		expected string
	}{
		{7, "Breakfast"},
		{10, "Breakfast"},
		{11, "Lunch"},
		{15, "Lunch"},
		{16, "Dinner"},
		{23, "Dinner"},
	}
	for _, tc := range testCases {
		at := time.Date(2026, 10, 14, tc.hour, 0, 0, 0, time.UTC)
		if got := MealForTime(at); got != tc.expected {
			t.Errorf("MealForTime(%d:00): expected %s, got %s", tc.hour, tc.expected, got)
		}
	}
}
