package forecast

import (
	"strings"
	"unicode"

	"github.com/agritech/agriclient/internal/models"
)

// MostFrequentCondition returns the raw condition label occurring most
// often in records. Ties break toward the label encountered first in
// input order, keeping the result deterministic. Returns "" for empty
// input.
func MostFrequentCondition(records []models.WeatherRecord) string {
	if len(records) == 0 {
		return ""
	}

	counts := make(map[string]int, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := counts[r.Conditions]; !seen {
			order = append(order, r.Conditions)
		}
		counts[r.Conditions]++
	}

	best := ""
	bestCount := 0
	for _, label := range order {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}

// FormatCondition turns a raw underscore-delimited condition label into a
// display string: "rain_overcast" becomes "Rain Overcast". Empty input
// yields "".
func FormatCondition(raw string) string {
	if raw == "" {
		return ""
	}
	words := strings.Split(raw, "_")
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

// FormatLocation turns a raw snake_case location key into a display
// string: "kericho_kenya" becomes "Kericho, Kenya". Empty input yields "".
func FormatLocation(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "_")
	for i, p := range parts {
		parts[i] = capitalizeFirst(p)
	}
	return strings.Join(parts, ", ")
}

// capitalizeFirst upper-cases the first rune of s, leaving the rest as-is.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
