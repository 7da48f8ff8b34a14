// Package cache memoizes remote weather and crop data for the lifetime
// of a session. Entries never expire and are never invalidated; a new
// session starts from an empty cache.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agritech/agriclient/internal/common"
	"github.com/agritech/agriclient/internal/gateway"
	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/observability"
)

// WeatherCache avoids re-fetching identical remote data within a session.
// Concurrent misses for the same key are collapsed into a single fetch.
// Safe for concurrent use.
type WeatherCache struct {
	gw     gateway.Gateway
	logger *zap.Logger
	// now is the clock used to pin the current year when building week
	// windows; overridable in tests.
	now func() time.Time

	mu              sync.RWMutex
	months          map[string][]models.WeatherRecord
	thresholds      map[string]*models.CropThreshold
	recommendations map[string][]string

	monthFlight     *coalescer[[]models.WeatherRecord]
	thresholdFlight *coalescer[*models.CropThreshold]
	recFlight       *coalescer[[]string]
}

// New returns an empty WeatherCache backed by gw. A nil logger is
// replaced with a no-op one.
func New(gw gateway.Gateway, logger *zap.Logger) *WeatherCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherCache{
		gw:              gw,
		logger:          logger,
		now:             time.Now,
		months:          make(map[string][]models.WeatherRecord),
		thresholds:      make(map[string]*models.CropThreshold),
		recommendations: make(map[string][]string),
		monthFlight:     newCoalescer[[]models.WeatherRecord](),
		thresholdFlight: newCoalescer[*models.CropThreshold](),
		recFlight:       newCoalescer[[]string](),
	}
}

// Month returns the month-granularity series for location, fetching it
// at most once per (location, month) pair.
func (c *WeatherCache) Month(ctx context.Context, location string, month int) ([]models.WeatherRecord, error) {
	key := monthKey(location, month)

	c.mu.RLock()
	cached, ok := c.months[key]
	c.mu.RUnlock()
	if ok {
		observability.CacheHitsTotal.WithLabelValues("month_weather").Inc()
		return cached, nil
	}
	observability.CacheMissesTotal.WithLabelValues("month_weather").Inc()

	return c.monthFlight.Do(ctx, key, func() ([]models.WeatherRecord, error) {
		// Re-check under the single-flight guard: a concurrent leader may
		// have populated the entry while we were queued.
		c.mu.RLock()
		cached, ok := c.months[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		records, err := c.gw.MonthWeather(ctx, location, month)
		if err != nil {
			return nil, fmt.Errorf("fetch month weather %s/%d: %w", location, month, err)
		}

		c.mu.Lock()
		c.months[key] = records
		c.mu.Unlock()
		return records, nil
	})
}

// WeekWindow returns the records for the 7 days following month/day at
// location. When the month series is already cached it is filtered
// locally; otherwise a narrower week-granularity request is issued
// instead of pulling the whole month.
func (c *WeatherCache) WeekWindow(ctx context.Context, location string, month, day int) ([]models.WeatherRecord, error) {
	c.mu.RLock()
	series, ok := c.months[monthKey(location, month)]
	c.mu.RUnlock()

	if ok {
		observability.CacheHitsTotal.WithLabelValues("week_window").Inc()
		anchor := time.Date(c.now().Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		window := common.NextDays(anchor, 7)

		var week []models.WeatherRecord
		for _, rec := range series {
			if common.InWindow(rec.Date.Time, window) {
				week = append(week, rec)
			}
		}
		return week, nil
	}

	observability.CacheMissesTotal.WithLabelValues("week_window").Inc()
	records, err := c.gw.WeekWeather(ctx, location, month, day)
	if err != nil {
		return nil, fmt.Errorf("fetch week weather %s/%d/%d: %w", location, month, day, err)
	}
	return records, nil
}

// CropThreshold returns the threshold entry for crop, fetching it at
// most once per crop name. A fetch failure is logged and reported as a
// nil threshold rather than an error: the forecast flow treats a missing
// threshold as "no suitability data".
func (c *WeatherCache) CropThreshold(ctx context.Context, crop string) *models.CropThreshold {
	c.mu.RLock()
	cached, ok := c.thresholds[crop]
	c.mu.RUnlock()
	if ok {
		observability.CacheHitsTotal.WithLabelValues("crop_threshold").Inc()
		return cached
	}
	observability.CacheMissesTotal.WithLabelValues("crop_threshold").Inc()

	threshold, err := c.thresholdFlight.Do(ctx, crop, func() (*models.CropThreshold, error) {
		c.mu.RLock()
		cached, ok := c.thresholds[crop]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetched, err := c.gw.CropThreshold(ctx, crop)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.thresholds[crop] = &fetched
		c.mu.Unlock()
		return &fetched, nil
	})
	if err != nil {
		c.logger.Error("fetch crop threshold failed", zap.String("crop", crop), zap.Error(err))
		return nil
	}
	return threshold
}

// Recommendations returns the weekly recommendation texts for the
// (location, month/day, crop) triple, memoized per (crop, location,
// month). An empty list is a valid cached result.
func (c *WeatherCache) Recommendations(ctx context.Context, location string, month, day int, crop string) ([]string, error) {
	key := fmt.Sprintf("%s-%s-%d", crop, location, month)

	c.mu.RLock()
	cached, ok := c.recommendations[key]
	c.mu.RUnlock()
	if ok {
		observability.CacheHitsTotal.WithLabelValues("recommendation").Inc()
		return cached, nil
	}
	observability.CacheMissesTotal.WithLabelValues("recommendation").Inc()

	return c.recFlight.Do(ctx, key, func() ([]string, error) {
		c.mu.RLock()
		cached, ok := c.recommendations[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		resp, err := c.gw.WeeklyRecommendations(ctx, location, month, day, crop)
		if err != nil {
			return nil, fmt.Errorf("fetch recommendations %s/%d for %s: %w", location, month, crop, err)
		}
		recs := resp.Recommendations
		if recs == nil {
			recs = []string{}
		}

		c.mu.Lock()
		c.recommendations[key] = recs
		c.mu.Unlock()
		return recs, nil
	})
}

func monthKey(location string, month int) string {
	return fmt.Sprintf("%s/%d", location, month)
}
