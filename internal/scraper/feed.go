package scraper

import (
	"fmt"

	"github.com/tidwall/gjson"

	"mspro-labs/dining-buddy/internal/models"
)

// DecodeLocations reads the location list payload.
func DecodeLocations(body []byte) ([]models.Location, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("location list is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("location list: expected array, got %s", root.Type)
	}

	var locations []models.Location
	root.ForEach(func(_, v gjson.Result) bool {
		locations = append(locations, models.Location{
			ID:           v.Get("location_id").String(),
			Title:        v.Get("location_title").String(),
			OpeningHours: v.Get("opening_hours").String(),
			ClosingHours: v.Get("closing_hours").String(),
		})
		return true
	})
	return locations, nil
}

// DecodeFeed reads a location's menu payload (meal -> category -> markup).
// Meal and category order follow the document, which a map would lose.
func DecodeFeed(body []byte) (models.RawFeed, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("menu feed is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("menu feed: expected object, got %s", root.Type)
	}

	feed := models.RawFeed{}
	root.ForEach(func(meal, categories gjson.Result) bool {
		mf := models.MealFeed{Meal: meal.String()}
		if categories.IsObject() {
			categories.ForEach(func(name, html gjson.Result) bool {
				mf.Categories = append(mf.Categories, models.CategoryFragment{
					Name: name.String(),
					HTML: html.String(),
				})
				return true
			})
		}
		feed = append(feed, mf)
		return true
	})
	return feed, nil
}
