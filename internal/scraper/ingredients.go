package scraper

import "strings"

// ParseIngredients splits a comma separated list on top-level commas only, so
// "Tree Nuts (Almond, Cashew)" stays one entry. Unbalanced parentheses are
// tolerated: every character still lands in some segment.
func ParseIngredients(text string) []string {
	if text == "" {
		return []string{}
	}

	result := []string{}
	var buf strings.Builder
	depth := 0
	for _, r := range text {
		if r == ',' && depth == 0 {
			result = append(result, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		buf.WriteRune(r)
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	if last := strings.TrimSpace(buf.String()); last != "" {
		result = append(result, last)
	}
	return result
}
