package embedder

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"mspro-labs/dining-buddy/internal/ai"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/models"
)

type fakeEmbedder struct {
	calls int
	fail  string
}

func (f *fakeEmbedder) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	f.calls++
	if f.fail != "" && strings.Contains(text, f.fail) {
		return nil, nil, errors.New("rate limited")
	}
	vec := []float32{float32(len(text)), 1}
	blob, err := ai.FloatsToBytes(vec)
	return blob, vec, err
}

func seed(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Connect(":memory:")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	rows := []models.DishRow{
		{Location: "Hampshire Dining Commons", Meal: "Lunch", DishName: "Falafel Bowl", Diets: "Vegan"},
		{Location: "Hampshire Dining Commons", Meal: "Lunch", DishName: "Beef Chili", Allergens: "Soy"},
	}
	if _, err := db.SaveRows(database, "run-1", rows); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}
	return database
}

func TestRun(t *testing.T) {
	database := seed(t)
	emb := &fakeEmbedder{}

	count, err := Run(context.Background(), database, emb, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 embedded, got %d", count)
	}

	vectors, _ := db.GetDishVectors(database)
	if len(vectors) != 2 {
		t.Errorf("Expected 2 stored vectors, got %d", len(vectors))
	}

	// Second pass finds nothing to do.
	count, err = Run(context.Background(), database, emb, 0)
	if err != nil || count != 0 {
		t.Errorf("Expected no work on second pass, got %d, %v", count, err)
	}
	if emb.calls != 2 {
		t.Errorf("Expected 2 embed calls in total, got %d", emb.calls)
	}
}

func TestRunSkipsFailures(t *testing.T) {
	database := seed(t)

	count, err := Run(context.Background(), database, &fakeEmbedder{fail: "Beef Chili"}, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 embedded, got %d", count)
	}
	left, _ := db.GetUnembeddedDishes(database)
	if len(left) != 1 {
		t.Errorf("Expected the failed dish to stay unembedded, got %d left", len(left))
	}
}

func TestRunCanceled(t *testing.T) {
	database := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := Run(ctx, database, &fakeEmbedder{}, 0)
	if !errors.Is(err, context.Canceled) || count != 0 {
		t.Errorf("Expected context.Canceled with no work, got %d, %v", count, err)
	}
}
