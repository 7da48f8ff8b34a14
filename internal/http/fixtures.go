package http

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/agritech/agriclient/internal/models"
)

// Fixture locations mirror the towns the mobile app ships with.
var fixtureLocations = []string{
	"kericho_kenya",
	"nairobi_kenya",
	"nakuru_kenya",
	"eldoret_kenya",
	"kisumu_kenya",
}

var fixtureCrops = []models.CropThreshold{
	{
		Name: "tea", Icon: "tea.png",
		MinTemp: 13, MaxTemp: 28,
		MinPrecip: 3, MaxPrecip: 12,
		MinHumidity: 60, MaxHumidity: 95,
		MinSolarRadiation: 10, MaxSolarRadiation: 25,
	},
	{
		Name: "maize", Icon: "maize.png",
		MinTemp: 18, MaxTemp: 32,
		MinPrecip: 1, MaxPrecip: 8,
		MinHumidity: 40, MaxHumidity: 80,
		MinSolarRadiation: 14, MaxSolarRadiation: 30,
	},
	{
		Name: "coffee", Icon: "coffee.png",
		MinTemp: 15, MaxTemp: 28,
		MinPrecip: 2, MaxPrecip: 10,
		MinHumidity: 50, MaxHumidity: 90,
		MinSolarRadiation: 12, MaxSolarRadiation: 26,
	},
	{
		Name: "beans", Icon: "beans.png",
		MinTemp: 16, MaxTemp: 30,
		MinPrecip: 1, MaxPrecip: 7,
		MinHumidity: 45, MaxHumidity: 85,
		MinSolarRadiation: 13, MaxSolarRadiation: 28,
	},
	{
		Name: "potatoes", Icon: "potatoes.png",
		MinTemp: 10, MaxTemp: 25,
		MinPrecip: 2, MaxPrecip: 9,
		MinHumidity: 55, MaxHumidity: 90,
		MinSolarRadiation: 11, MaxSolarRadiation: 24,
	},
}

var conditionPool = []string{
	"clear",
	"partly_cloudy",
	"overcast",
	"rain",
	"rain_overcast",
}

// nowUTC is overridable in tests to pin the fixture calendar.
var nowUTC = func() time.Time { return time.Now().UTC() }

func knownLocation(location string) bool {
	for _, l := range fixtureLocations {
		if l == location {
			return true
		}
	}
	return false
}

func cropByName(name string) (models.CropThreshold, bool) {
	for _, c := range fixtureCrops {
		if c.Name == name {
			return c, true
		}
	}
	return models.CropThreshold{}, false
}

// weatherFor returns a deterministic synthetic record for a calendar day.
// The same location/month/day always produces the same record so that
// client-side caching behavior is observable across requests.
func weatherFor(location string, month, day int) models.WeatherRecord {
	h := fnv.New64a()
	_, _ = h.Write([]byte(location))
	seed := int64(h.Sum64()) + int64(month)*1000 + int64(day)
	rng := rand.New(rand.NewSource(seed))

	// Seasonal curve: warmest around month 2, wettest around month 4 and 11.
	base := 20.0 + 5.0*math.Cos(float64(month-2)*math.Pi/6)
	tmax := base + rng.Float64()*6
	tmin := tmax - 6 - rng.Float64()*4
	precip := rng.Float64() * 10
	humidity := 45 + rng.Float64()*45

	cond := conditionPool[int(precip/2.5)%len(conditionPool)]

	year := nowUTC().Year()
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	return models.WeatherRecord{
		Day:        date.Weekday().String(),
		Date:       models.WireTime{Time: date},
		TempMax:    round1(tmax),
		TempMin:    round1(tmin),
		Temp:       round1((tmax + tmin) / 2),
		Humidity:   round1(humidity),
		Precip:     round1(precip),
		WindSpeed:  round1(5 + rng.Float64()*20),
		Conditions: cond,
	}
}

// monthWeather returns one record per calendar day of the month.
func monthWeather(location string, month int) []models.WeatherRecord {
	year := nowUTC().Year()
	days := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]models.WeatherRecord, 0, days)
	for d := 1; d <= days; d++ {
		out = append(out, weatherFor(location, month, d))
	}
	return out
}

// weekWeather returns the seven days strictly after the given day,
// rolling into the next month when the window crosses a boundary.
func weekWeather(location string, month, day int) []models.WeatherRecord {
	year := nowUTC().Year()
	anchor := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	out := make([]models.WeatherRecord, 0, 7)
	for i := 1; i <= 7; i++ {
		d := anchor.AddDate(0, 0, i)
		out = append(out, weatherFor(location, int(d.Month()), d.Day()))
	}
	return out
}

// suitableCrops filters the crop list to those whose thresholds contain
// the location's average conditions for the current month.
func suitableCrops(location string) []models.CropThreshold {
	month := int(nowUTC().Month())
	records := monthWeather(location, month)

	var temp, precip, humidity float64
	for _, r := range records {
		temp += r.Temp
		precip += r.Precip
		humidity += r.Humidity
	}
	n := float64(len(records))
	temp, precip, humidity = temp/n, precip/n, humidity/n

	out := make([]models.CropThreshold, 0, len(fixtureCrops))
	for _, c := range fixtureCrops {
		if temp >= c.MinTemp && temp <= c.MaxTemp &&
			precip >= c.MinPrecip && precip <= c.MaxPrecip &&
			humidity >= c.MinHumidity && humidity <= c.MaxHumidity {
			out = append(out, c)
		}
	}
	return out
}

// recommendationsFor compares each day of the week window against the
// crop's thresholds and produces one advisory line per breach.
func recommendationsFor(location string, month, day int, crop models.CropThreshold) []string {
	var out []string
	for _, r := range weekWeather(location, month, day) {
		label := r.Date.Time.Format("Jan 2")
		switch {
		case r.TempMax > crop.MaxTemp:
			out = append(out, fmt.Sprintf("%s: heat above the %s range, irrigate in the evening", label, crop.Name))
		case r.TempMin < crop.MinTemp:
			out = append(out, fmt.Sprintf("%s: cold risk for %s, delay planting", label, crop.Name))
		case r.Precip > crop.MaxPrecip:
			out = append(out, fmt.Sprintf("%s: heavy rain expected, check %s drainage", label, crop.Name))
		case r.Precip < crop.MinPrecip:
			out = append(out, fmt.Sprintf("%s: dry spell, supplement water for %s", label, crop.Name))
		}
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("Conditions in %s look favorable for %s this week", strings.ReplaceAll(location, "_", " "), crop.Name))
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
