package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"mspro-labs/dining-buddy/internal/advisor"
	"mspro-labs/dining-buddy/internal/db"
	"mspro-labs/dining-buddy/internal/embedder"
	"mspro-labs/dining-buddy/internal/models"
	"mspro-labs/dining-buddy/internal/searcher"
	"mspro-labs/dining-buddy/internal/verify"
)

// Server exposes the dish table, search and verification over HTTP.
type Server struct {
	database *sql.DB
	emb      embedder.Embedder
}

// New returns a server. emb may be nil, which disables /api/search.
func New(database *sql.DB, emb embedder.Embedder) *Server {
	return &Server{database: database, emb: emb}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dishes", s.handleDishes)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/verify", s.handleVerify)
	return mux
}

type dishJSON struct {
	Location      string   `json:"location"`
	Meal          string   `json:"meal"`
	DishName      string   `json:"dish_name"`
	Cost          *float64 `json:"cost"`
	Calories      int      `json:"calories"`
	Diets         string   `json:"diets,omitempty"`
	Allergens     string   `json:"allergens,omitempty"`
	Protein       float64  `json:"protein"`
	Fiber         float64  `json:"fiber"`
	Sugar         float64  `json:"sugar"`
	SaturatedFat  float64  `json:"saturated_fat"`
	Sodium        float64  `json:"sodium"`
	NutrientScore float64  `json:"nutrient_score"`
}

func toJSON(r models.DishRow) dishJSON {
	return dishJSON{
		Location:      r.Location,
		Meal:          r.Meal,
		DishName:      r.DishName,
		Cost:          r.Cost,
		Calories:      r.Calories,
		Diets:         r.Diets,
		Allergens:     r.Allergens,
		Protein:       r.Protein,
		Fiber:         r.Fiber,
		Sugar:         r.Sugar,
		SaturatedFat:  r.SaturatedFat,
		Sodium:        r.Sodium,
		NutrientScore: r.NutrientScore,
	}
}

// handleDishes lists active dishes, optionally narrowed by ?location= (substring,
// any case) and ?meal= (exact display form).
func (s *Server) handleDishes(w http.ResponseWriter, r *http.Request) {
	rows, err := db.GetActiveRows(s.database)
	if err != nil {
		log.Printf("DB error: %v", err)
		http.Error(w, "Failed to load dishes", http.StatusInternalServerError)
		return
	}
	if loc := r.URL.Query().Get("location"); loc != "" {
		rows = advisor.FilterByLocation(rows, loc)
	}
	meal := r.URL.Query().Get("meal")

	out := []dishJSON{}
	for _, row := range rows {
		if meal != "" && row.Meal != meal {
			continue
		}
		out = append(out, toJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

type searchHit struct {
	Dish  string  `json:"dish_name"`
	Where string  `json:"location"`
	Meal  string  `json:"meal"`
	Score float32 `json:"match"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.emb == nil {
		http.Error(w, "Search is not configured", http.StatusServiceUnavailable)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing q", http.StatusBadRequest)
		return
	}

	results, err := searcher.Perform(r.Context(), s.database, s.emb, query)
	if err != nil {
		log.Printf("Search error: %v", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	hits := []searchHit{}
	for _, res := range results {
		// 0.2 = 20% match threshold.
		if res.Score < 0.2 {
			continue
		}
		hits = append(hits, searchHit{Dish: res.Item.DishName, Where: res.Item.Location, Meal: res.Item.Meal, Score: res.Score})
	}
	writeJSON(w, http.StatusOK, hits)
}

type verifyRequest struct {
	Text string `json:"text"`
	verify.Expectations
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	rows, err := db.GetActiveRows(s.database)
	if err != nil {
		log.Printf("DB error: %v", err)
		http.Error(w, "Failed to load dishes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, verify.Check(req.Text, rows, req.Expectations))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode error: %v", err)
	}
}
