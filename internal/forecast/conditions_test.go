package forecast

import (
	"testing"

	"github.com/agritech/agriclient/internal/models"
)

func withConditions(labels ...string) []models.WeatherRecord {
	records := make([]models.WeatherRecord, len(labels))
	for i, l := range labels {
		records[i] = models.WeatherRecord{Conditions: l}
	}
	return records
}

// TestMostFrequentCondition verifies counting, the stable first-seen
// tie-break, and the empty-input case.
func TestMostFrequentCondition(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{
			name:   "empty input",
			labels: nil,
			want:   "",
		},
		{
			name:   "clear majority",
			labels: []string{"rain", "clear", "rain"},
			want:   "rain",
		},
		{
			name:   "tie breaks to first seen",
			labels: []string{"overcast", "rain", "rain", "overcast"},
			want:   "overcast",
		},
		{
			name:   "single record",
			labels: []string{"partially_cloudy"},
			want:   "partially_cloudy",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MostFrequentCondition(withConditions(tc.labels...))
			if got != tc.want {
				t.Errorf("MostFrequentCondition(%v) = %q, want %q", tc.labels, got, tc.want)
			}
		})
	}
}

// TestFormatCondition verifies underscore splitting and title-casing.
func TestFormatCondition(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"rain", "Rain"},
		{"rain_overcast", "Rain Overcast"},
		{"partially_cloudy", "Partially Cloudy"},
	}

	for _, tc := range tests {
		if got := FormatCondition(tc.in); got != tc.want {
			t.Errorf("FormatCondition(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestFormatLocation verifies snake_case keys render as comma-separated
// capitalized segments, with empty input passing through.
func TestFormatLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"nairobi", "Nairobi"},
		{"kericho_kenya", "Kericho, Kenya"},
		{"addis_ababa_ethiopia", "Addis, Ababa, Ethiopia"},
	}

	for _, tc := range tests {
		if got := FormatLocation(tc.in); got != tc.want {
			t.Errorf("FormatLocation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
