package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mspro-labs/dining-buddy/internal/ai"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/models"
	"mspro-labs/dining-buddy/internal/verify"
)

type unitEmbedder struct{}

func (unitEmbedder) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	vec := []float32{1, 0}
	if strings.Contains(strings.ToLower(text), "chicken") {
		vec = []float32{0, 1}
	}
	blob, err := ai.FloatsToBytes(vec)
	return blob, vec, err
}

func newTestServer(t *testing.T, withSearch bool) http.Handler {
	t.Helper()
	database, err := db.Connect(":memory:")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cost := 19.25
	rows := []models.DishRow{
		{Location: "Franklin Dining Commons", Meal: "Dinner", DishName: "Grilled Chicken", Cost: &cost, Calories: 250, Allergens: "Gluten", NutrientScore: 35},
		{Location: "Franklin Dining Commons", Meal: "Lunch", DishName: "Lentil Soup", Calories: 180, Diets: "Vegan"},
		{Location: "Worcester Commons", Meal: "Dinner", DishName: "Tofu Stir Fry", Calories: 300, Diets: "Vegan", Allergens: "Soy"},
	}
	if _, err := db.SaveRows(database, "run-1", rows); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}

	if !withSearch {
		return New(database, nil).Handler()
	}
	embedAll(t, database)
	return New(database, unitEmbedder{}).Handler()
}

func embedAll(t *testing.T, database *sql.DB) {
	t.Helper()
	targets, _ := db.GetUnembeddedDishes(database)
	for id, text := range targets {
		blob, _, _ := unitEmbedder{}.EmbedString(context.Background(), text)
		if err := db.UpdateEmbedding(database, id, blob); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHandleDishes(t *testing.T) {
	h := newTestServer(t, false)

	testCases := []struct {
		query    string
		expected []string
	}{
		{"", []string{"Grilled Chicken", "Lentil Soup", "Tofu Stir Fry"}},
		{"?location=franklin", []string{"Grilled Chicken", "Lentil Soup"}},
		{"?meal=Dinner", []string{"Grilled Chicken", "Tofu Stir Fry"}},
		{"?location=worcester&meal=Lunch", []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dishes"+tc.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rec.Code)
			}
			var got []dishJSON
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("bad JSON: %v", err)
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %d dishes, got %d", len(tc.expected), len(got))
			}
			for i, name := range tc.expected {
				if got[i].DishName != name {
					t.Errorf("index %d: expected %s, got %s", i, name, got[i].DishName)
				}
			}
		})
	}
}

func TestHandleDishesNullCost(t *testing.T) {
	h := newTestServer(t, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dishes?meal=Lunch", nil))
	if !strings.Contains(rec.Body.String(), `"cost":null`) {
		t.Errorf("Expected a null cost for Lentil Soup, got %s", rec.Body.String())
	}
}

func TestHandleSearch(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestServer(t, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=chicken", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rec.Code)
		}
	})

	h := newTestServer(t, true)

	t.Run("missing query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("threshold", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=chicken", nil))
		var hits []searchHit
		if err := json.NewDecoder(rec.Body).Decode(&hits); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if len(hits) != 1 || hits[0].Dish != "Grilled Chicken" {
			t.Errorf("Expected only Grilled Chicken above the threshold, got %+v", hits)
		}
	})
}

func TestHandleVerify(t *testing.T) {
	h := newTestServer(t, false)

	body := `{"text": "1. Grilled Chicken - smoky\n2. Tofu Stir Fry", "location": "Franklin Dining Commons", "diet": "vegan", "allergen": "gluten"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rep verify.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(rep.Claims) != 2 || rep.Claims[0].DishName != "Grilled Chicken" {
		t.Errorf("claims wrong: %+v", rep.Claims)
	}
	if rep.Location == nil || *rep.Location != 50 {
		t.Errorf("Expected location accuracy 50, got %v", rep.Location)
	}
	if rep.Diet == nil || *rep.Diet != 50 {
		t.Errorf("Expected diet accuracy 50, got %v", rep.Diet)
	}
	if rep.Allergen == nil || *rep.Allergen != 50 {
		t.Errorf("Expected allergen accuracy 50, got %v", rep.Allergen)
	}
	if rep.Meal != nil {
		t.Errorf("meal check should not run, got %v", *rep.Meal)
	}
}

func TestHandleVerifyBadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, false).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
