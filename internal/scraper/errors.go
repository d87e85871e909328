package scraper

import "fmt"

// MalformedItemError reports a menu item that could not be turned into a dish
// record. Only the item is dropped; the rest of the fragment is still parsed.
type MalformedItemError struct {
	Dish  string
	Meal  string
	Attr  string
	Value string
}

func (e *MalformedItemError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("dish %q (%s): missing %s", e.Dish, e.Meal, e.Attr)
	}
	return fmt.Sprintf("dish %q (%s): invalid %s %q", e.Dish, e.Meal, e.Attr, e.Value)
}

// FetchError wraps a failure to load one location's data.
type FetchError struct {
	LocationID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch location %s: %v", e.LocationID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
