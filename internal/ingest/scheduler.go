package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
	"github.com/mounirchebbi/beach-safety-app/internal/metrics"
	"github.com/mounirchebbi/beach-safety-app/internal/safety"
)

// CenterSource lists the centers the scheduler works through.
type CenterSource interface {
	ActiveCenters(ctx context.Context) ([]domain.Center, error)
}

// WeatherUpdater pulls and stores a fresh reading for one center.
type WeatherUpdater interface {
	UpdateCenter(ctx context.Context, center domain.Center) (*domain.WeatherReading, error)
}

// FlagUpdater re-evaluates a center's flag against its latest reading.
type FlagUpdater interface {
	AutoUpdate(ctx context.Context, centerID string) (*safety.AutoUpdateResult, error)
}

// Publisher pushes reading updates to live subscribers.
type Publisher interface {
	PublishCenter(centerID, event string, payload any)
}

// Scheduler drives the periodic ingest cycle: for every active center, fetch
// weather, store the reading, notify subscribers and re-run the flag engine.
// Centers are independent; one center failing never blocks the rest.
type Scheduler struct {
	centers  CenterSource
	weather  WeatherUpdater
	flags    FlagUpdater
	pub      Publisher
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	interval time.Duration
	perStep  time.Duration
}

func NewScheduler(centers CenterSource, weather WeatherUpdater, flags FlagUpdater, pub Publisher, clock clockwork.Clock, m *metrics.Metrics, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		centers:  centers,
		weather:  weather,
		flags:    flags,
		pub:      pub,
		clock:    clock,
		metrics:  m,
		interval: interval,
		perStep:  time.Minute,
	}
}

// Run executes one cycle immediately, then on every tick until ctx is
// cancelled. The startup cycle seeds readings and flags for centers that
// have none yet.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("ingest scheduler started")

	s.Cycle(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ingest scheduler stopped")
			return
		case <-ticker.Chan():
			s.Cycle(ctx)
		}
	}
}

// Cycle processes every active center once, each in its own goroutine, and
// waits for all of them to settle.
func (s *Scheduler) Cycle(ctx context.Context) {
	centers, err := s.centers.ActiveCenters(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ingest cycle: listing centers failed")
		return
	}

	var wg sync.WaitGroup
	for _, center := range centers {
		wg.Add(1)
		go func(c domain.Center) {
			defer wg.Done()
			s.updateCenter(ctx, c)
		}(center)
	}
	wg.Wait()

	if s.metrics != nil {
		s.metrics.SchedulerCycles.Inc()
	}
	log.Debug().Int("centers", len(centers)).Msg("ingest cycle complete")
}

func (s *Scheduler) updateCenter(ctx context.Context, center domain.Center) {
	ctx, cancel := context.WithTimeout(ctx, s.perStep)
	defer cancel()

	reading, err := s.weather.UpdateCenter(ctx, center)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IngestRuns.WithLabelValues("error").Inc()
		}
		log.Error().Err(err).Str("center_id", center.ID).Msg("weather update failed")
		return
	}
	s.pub.PublishCenter(center.ID, hub.EventWeatherUpdate, reading)

	if _, err := s.flags.AutoUpdate(ctx, center.ID); err != nil {
		if s.metrics != nil {
			s.metrics.IngestRuns.WithLabelValues("error").Inc()
		}
		log.Error().Err(err).Str("center_id", center.ID).Msg("flag evaluation failed")
		return
	}
	if s.metrics != nil {
		s.metrics.IngestRuns.WithLabelValues("ok").Inc()
	}
}
