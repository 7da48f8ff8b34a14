// Package forecast holds the forecast state store and the pure helpers
// it derives display data with. The store owns the aggregate state the
// UI renders: selected location, crop, and date, plus the weather and
// recommendation data derived from them.
package forecast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agritech/agriclient/internal/cache"
	"github.com/agritech/agriclient/internal/gateway"
	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/observability"
)

// User-facing notices for fetch failures. The underlying error goes to
// the log; the UI only sees these generic messages.
const (
	noticeInitialFailed = "Failed to load initial data."
	noticeWeatherFailed = "Failed to load weather data."
	noticeCropFailed    = "Failed to load crop data."
)

// State is the forecast aggregate published to the UI. Snapshots are
// value copies; slices they carry must be treated as read-only.
type State struct {
	Locations         []string
	SelectedLocation  string
	SelectedCrop      string
	CurrentDate       time.Time
	TodaysWeather     *models.WeatherRecord
	WeeklyWeather     []models.WeatherRecord
	NextWeekCondition string
	SuitableCrops     []models.CropThreshold
	CropThreshold     *models.CropThreshold
	Recommendations   []string
	IsLoading         bool
}

// Store coordinates the selection inputs and the derived forecast data.
// Setters only record the new selection; the Run loop observes changes
// and refreshes derived state, so a burst of setter calls collapses into
// a single refresh over the final (location, crop, date) tuple.
//
// Completions of a superseded refresh are discarded: every selection
// change bumps a generation counter and a cycle only writes state while
// its generation is still current.
type Store struct {
	gw     gateway.Gateway
	cache  *cache.WeatherCache
	logger *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	state      State
	generation uint64

	changed chan struct{}
	updates chan State
	errs    chan string
}

// NewStore returns a Store backed by gw and c. The current date starts
// at the system clock's today. Call Run to start the refresh loop.
func NewStore(gw gateway.Gateway, c *cache.WeatherCache, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gw:      gw,
		cache:   c,
		logger:  logger,
		now:     time.Now,
		changed: make(chan struct{}, 1),
		updates: make(chan State, 1),
		errs:    make(chan string, 16),
	}
	s.state.CurrentDate = s.now()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Updates delivers state snapshots after each change, latest-wins: a slow
// consumer only ever misses intermediate snapshots, never the newest.
func (s *Store) Updates() <-chan State {
	return s.updates
}

// Errors delivers user-facing failure notices. Delivery is best-effort;
// notices are dropped when the consumer falls far behind.
func (s *Store) Errors() <-chan string {
	return s.errs
}

// SelectLocation records a new selected location.
func (s *Store) SelectLocation(location string) {
	s.mu.Lock()
	s.state.SelectedLocation = location
	s.generation++
	s.mu.Unlock()
	s.notifyChanged()
}

// SelectCrop records a new selected crop.
func (s *Store) SelectCrop(crop string) {
	s.mu.Lock()
	s.state.SelectedCrop = crop
	s.generation++
	s.mu.Unlock()
	s.notifyChanged()
}

// SetDate records a new anchor date.
func (s *Store) SetDate(date time.Time) {
	s.mu.Lock()
	s.state.CurrentDate = date
	s.generation++
	s.mu.Unlock()
	s.notifyChanged()
}

// Run performs the initial load and then serves refresh cycles until ctx
// is cancelled. Intended to be started once, on its own goroutine.
func (s *Store) Run(ctx context.Context) {
	s.initialLoad(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.changed:
			s.refresh(ctx)
		}
	}
}

// initialLoad fetches the location and crop lists and defaults both
// selections to the first entry. Empty lists leave the selections unset.
// A fetch failure falls back to empty defaults and emits a notice.
func (s *Store) initialLoad(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	locations, err := s.gw.Locations(ctx)
	if err != nil {
		s.logger.Error("initial load: locations", zap.Error(err))
		s.emitError(noticeInitialFailed)
		return
	}

	crops, err := s.gw.Crops(ctx)
	if err != nil {
		s.logger.Error("initial load: crops", zap.Error(err))
		s.emitError(noticeInitialFailed)
		return
	}

	s.mu.Lock()
	s.state.Locations = locations
	if len(locations) > 0 {
		s.state.SelectedLocation = locations[0]
	}
	s.state.SuitableCrops = crops
	if len(crops) > 0 {
		s.state.SelectedCrop = crops[0].Name
	}
	s.generation++
	s.mu.Unlock()
	s.publish()

	// The defaults count as a selection change and seed the first refresh.
	s.notifyChanged()
}

// refresh runs one derived-data cycle over the selection tuple as it
// stands right now. Weather and crop data load concurrently; a failure
// in one does not abort the other.
func (s *Store) refresh(ctx context.Context) {
	s.mu.RLock()
	gen := s.generation
	location := s.state.SelectedLocation
	crop := s.state.SelectedCrop
	date := s.state.CurrentDate
	s.mu.RUnlock()

	if location == "" {
		return
	}

	observability.RefreshCyclesTotal.Inc()
	s.writeIfCurrent(gen, func(st *State) { st.IsLoading = true })

	var g errgroup.Group
	g.Go(func() error {
		s.loadWeather(ctx, gen, location, date)
		return nil
	})
	if crop != "" {
		g.Go(func() error {
			s.loadCropData(ctx, gen, location, crop, date)
			return nil
		})
	}
	_ = g.Wait()

	s.writeIfCurrent(gen, func(st *State) { st.IsLoading = false })
}

// loadWeather fetches today's record, the current week window, the next
// week's aggregated condition, and the location's suitable crops. The
// three weather fetches have no ordering dependency and run concurrently.
func (s *Store) loadWeather(ctx context.Context, gen uint64, location string, date time.Time) {
	var failed atomic.Bool

	var g errgroup.Group
	g.Go(func() error {
		rec, err := s.gw.TodayWeather(ctx, location)
		if err != nil {
			s.logger.Error("fetch today's weather", zap.String("location", location), zap.Error(err))
			failed.Store(true)
			return nil
		}
		s.writeIfCurrent(gen, func(st *State) { st.TodaysWeather = &rec })
		return nil
	})
	g.Go(func() error {
		records, err := s.cache.WeekWindow(ctx, location, int(date.Month()), date.Day())
		if err != nil {
			s.logger.Error("fetch week weather", zap.String("location", location), zap.Error(err))
			failed.Store(true)
			return nil
		}
		s.writeIfCurrent(gen, func(st *State) { st.WeeklyWeather = records })
		return nil
	})
	g.Go(func() error {
		anchor := date.AddDate(0, 0, 7)
		records, err := s.cache.WeekWindow(ctx, location, int(anchor.Month()), anchor.Day())
		if err != nil {
			s.logger.Error("fetch next week weather", zap.String("location", location), zap.Error(err))
			failed.Store(true)
			return nil
		}
		condition := FormatCondition(MostFrequentCondition(records))
		s.writeIfCurrent(gen, func(st *State) { st.NextWeekCondition = condition })
		return nil
	})
	g.Go(func() error {
		crops, err := s.gw.SuitableCrops(ctx, location)
		if err != nil {
			s.logger.Error("fetch suitable crops", zap.String("location", location), zap.Error(err))
			failed.Store(true)
			return nil
		}
		if len(crops) > 0 {
			s.writeIfCurrent(gen, func(st *State) { st.SuitableCrops = crops })
		}
		return nil
	})
	_ = g.Wait()

	if failed.Load() {
		s.emitError(noticeWeatherFailed)
	}
}

// loadCropData fetches the crop's threshold and the week's textual
// recommendations. A missing threshold (fetch failure) is tolerated and
// written as nil; a recommendation failure emits the crop notice without
// clobbering the threshold.
func (s *Store) loadCropData(ctx context.Context, gen uint64, location, crop string, date time.Time) {
	threshold := s.cache.CropThreshold(ctx, crop)
	s.writeIfCurrent(gen, func(st *State) { st.CropThreshold = threshold })

	recs, err := s.cache.Recommendations(ctx, location, int(date.Month()), date.Day(), crop)
	if err != nil {
		s.logger.Error("load crop data", zap.String("crop", crop), zap.Error(err))
		s.emitError(noticeCropFailed)
		return
	}
	s.writeIfCurrent(gen, func(st *State) { st.Recommendations = recs })
}

// writeIfCurrent applies mutate to the state only if gen is still the
// current generation, then publishes a snapshot. Stale completions are
// counted and dropped.
func (s *Store) writeIfCurrent(gen uint64, mutate func(*State)) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		observability.StaleRefreshesDiscarded.Inc()
		return
	}
	mutate(&s.state)
	s.mu.Unlock()
	s.publish()
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
	s.publish()
}

// notifyChanged marks the selection dirty. The channel holds at most one
// pending notification, so rapid successive changes coalesce into one
// refresh cycle over the final values.
func (s *Store) notifyChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// publish pushes the current snapshot to the updates channel, replacing
// an unconsumed older snapshot if necessary.
func (s *Store) publish() {
	snap := s.Snapshot()
	for {
		select {
		case s.updates <- snap:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func (s *Store) emitError(notice string) {
	select {
	case s.errs <- notice:
	default:
	}
}
