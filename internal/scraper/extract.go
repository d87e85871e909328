package scraper

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/dining-buddy/internal/models"
)

// itemSelector matches the dish anchors in a category fragment.
const itemSelector = `a[href="#inline"]`

// Item attributes carried by each dish anchor.
const (
	attrPrice     = "data-price"
	attrDiets     = "data-clean-diet-str"
	attrAllergens = "data-allergens"
	attrCalories  = "data-calories"
	attrProtein   = "data-protein"
	attrFiber     = "data-dietary-fiber"
	attrSugars    = "data-sugars"
	attrSatFat    = "data-sat-fat"
	attrSodium    = "data-sodium"
)

// defaultCosts is the flat meal price charged when an item has no price.
var defaultCosts = map[string]float64{
	models.Breakfast: 12.00,
	models.Lunch:     16.25,
	models.Dinner:    19.25,
}

// itemAttrs is the raw attribute set of one dish anchor.
type itemAttrs struct {
	name      string
	price     string
	diets     string
	allergens string
	calories  string
	protein   string
	fiber     string
	sugars    string
	satFat    string
	sodium    string
}

func readAttrs(s *goquery.Selection) itemAttrs {
	return itemAttrs{
		name:      strings.TrimSpace(s.Text()),
		price:     s.AttrOr(attrPrice, ""),
		diets:     s.AttrOr(attrDiets, ""),
		allergens: s.AttrOr(attrAllergens, ""),
		calories:  s.AttrOr(attrCalories, ""),
		protein:   s.AttrOr(attrProtein, ""),
		fiber:     s.AttrOr(attrFiber, ""),
		sugars:    s.AttrOr(attrSugars, ""),
		satFat:    s.AttrOr(attrSatFat, ""),
		sodium:    s.AttrOr(attrSodium, ""),
	}
}

// ExtractDishes parses one category fragment into dish records for meal.
// Items without a usable calorie count are skipped; their errors are joined
// into the returned error while the remaining records are still returned.
func ExtractDishes(fragment, meal string) ([]models.DishRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	var dishes []models.DishRecord
	var errs []error
	doc.Find(itemSelector).Each(func(_ int, s *goquery.Selection) {
		dish, err := buildDish(readAttrs(s), meal)
		if err != nil {
			errs = append(errs, err)
			return
		}
		dishes = append(dishes, dish)
	})

	return dishes, errors.Join(errs...)
}

func buildDish(a itemAttrs, meal string) (models.DishRecord, error) {
	calories, err := strconv.Atoi(strings.TrimSpace(a.calories))
	if err != nil {
		return models.DishRecord{}, &MalformedItemError{Dish: a.name, Meal: meal, Attr: attrCalories, Value: a.calories}
	}

	dish := models.DishRecord{
		Name:         a.name,
		Meal:         meal,
		Diets:        splitDiets(a.diets),
		Allergens:    ParseIngredients(a.allergens),
		Cost:         parseCost(a.price, meal),
		Calories:     calories,
		Fiber:        parseAmount(a.fiber, "g"),
		Sugar:        parseAmount(a.sugars, "g"),
		SaturatedFat: parseAmount(a.satFat, "g"),
		Sodium:       parseAmount(a.sodium, "mg"),
	}
	if p := parseAmount(a.protein, "g"); p != nil {
		dish.Protein = *p
	}
	return dish, nil
}

func splitDiets(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ", ")
}

func parseCost(price, meal string) models.Cost {
	if price != "" && price != "N/A" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(price), 64); err == nil {
			return models.Cost{Value: v, Known: true}
		}
	}
	if v, ok := defaultCosts[meal]; ok {
		return models.Cost{Value: v, Known: true}
	}
	return models.Cost{}
}

// parseAmount strips unit and parses the rest. Absent or malformed values are nil.
func parseAmount(raw, unit string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, unit)), 64)
	if err != nil {
		return nil
	}
	return &v
}
