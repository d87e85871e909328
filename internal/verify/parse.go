package verify

import (
	"strings"
	"unicode"
)

// Claim is one dish named in a numbered suggestion list.
type Claim struct {
	Position int    `json:"position"`
	DishName string `json:"dish_name"`
}

// ParseSuggestions pulls the numbered lines out of model output and reduces
// each to a dish name: list marker dropped, description after " - " dropped.
func ParseSuggestions(text string) []Claim {
	text = strings.TrimSpace(strings.ReplaceAll(text, "**", ""))

	var claims []Claim
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first := []rune(line)[0]; !unicode.IsDigit(first) {
			continue
		}
		claims = append(claims, Claim{
			Position: len(claims) + 1,
			DishName: cleanDishName(line),
		})
	}
	return claims
}

func cleanDishName(line string) string {
	if _, rest, ok := strings.Cut(line, ". "); ok {
		line = rest
	}
	name, _, _ := strings.Cut(line, " - ")
	return strings.TrimSpace(name)
}
