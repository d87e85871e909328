package models

// Meal periods recognized by the dining feed.
const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
)

// Location is one entry of the dining location list.
type Location struct {
	ID           string
	Title        string
	OpeningHours string
	ClosingHours string
}

// CategoryFragment is the markup for one menu category.
type CategoryFragment struct {
	Name string
	HTML string
}

// MealFeed groups the category fragments served for one meal period.
type MealFeed struct {
	Meal       string
	Categories []CategoryFragment
}

// RawFeed is a location's menu feed in document order. An empty feed stands in
// for a location whose fetch failed.
type RawFeed []MealFeed

// Cost is a dish price. Known is false for the "unknown" sentinel.
type Cost struct {
	Value float64
	Known bool
}

// DishRecord holds the scraped data for a single menu item at one meal.
// Fiber, Sugar, SaturatedFat and Sodium are nil when the feed did not carry them.
type DishRecord struct {
	Name         string
	Meal         string
	Diets        []string
	Allergens    []string
	Cost         Cost
	Calories     int
	Protein      float64
	Fiber        *float64
	Sugar        *float64
	SaturatedFat *float64
	Sodium       *float64
}

// MealMenu is the ordered dish list for one meal period.
type MealMenu struct {
	Meal   string
	Dishes []DishRecord
}

// Menu keeps meal periods in the order the feed listed them.
type Menu []MealMenu

// Dishes returns the dishes served for meal, or nil.
func (m Menu) Dishes(meal string) []DishRecord {
	for _, mm := range m {
		if mm.Meal == meal {
			return mm.Dishes
		}
	}
	return nil
}

// LocationMenu is the aggregated menu of one open location.
type LocationMenu struct {
	Name string
	Menu Menu
}

// DishRow is the flat, scored projection of a dish at a location.
// Empty Diets or Allergens means the dish carried none. Cost is nil when unknown.
type DishRow struct {
	Location      string
	Meal          string
	DishName      string
	Cost          *float64
	Calories      int
	Diets         string
	Allergens     string
	Protein       float64
	Fiber         float64
	Sugar         float64
	SaturatedFat  float64
	Sodium        float64
	NutrientScore float64
}
