package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// Store is the slice of storage the ingestion path needs.
type Store interface {
	InsertReading(ctx context.Context, rd *domain.WeatherReading) error
	LatestReading(ctx context.Context, centerID string) (*domain.WeatherReading, error)
	ReadingsSince(ctx context.Context, centerID string, since time.Time) ([]domain.WeatherReading, error)
}

// ForecastStore persists daily forecast rows, one per center and date.
type ForecastStore interface {
	UpsertForecast(ctx context.Context, day *domain.ForecastDay) error
	ForecastsByCenter(ctx context.Context, centerID string) ([]domain.ForecastDay, error)
}

// Service fetches, enriches and persists environmental readings per center.
type Service struct {
	client    *Client
	store     Store
	forecasts ForecastStore
}

func NewService(client *Client, store Store, forecasts ForecastStore) *Service {
	return &Service{client: client, store: store, forecasts: forecasts}
}

// UpdateCenter fetches a fresh observation for the center, merges in marine
// data and persists the resulting reading.
func (s *Service) UpdateCenter(ctx context.Context, center domain.Center) (*domain.WeatherReading, error) {
	obs, err := s.client.FetchCurrent(ctx, center.Latitude, center.Longitude)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	marine := SimulateMarine(now)

	rd := &domain.WeatherReading{
		CenterID:      center.ID,
		Temperature:   obs.Temperature,
		Humidity:      obs.Humidity,
		Pressure:      obs.Pressure,
		WindSpeed:     obs.WindSpeed,
		WindDirection: obs.WindDirection,
		Condition:     obs.Condition,
		Visibility:    obs.Visibility,
		Precipitation: obs.Precipitation,
		WaveHeight:    marine.WaveHeight,
		CurrentSpeed:  marine.CurrentSpeed,
		RecordedAt:    now,
	}

	if err := s.store.InsertReading(ctx, rd); err != nil {
		return nil, err
	}

	log.Info().
		Str("center_id", center.ID).
		Str("center", center.Name).
		Float64("temperature", rd.Temperature).
		Str("condition", rd.Condition).
		Float64("wave_height", rd.WaveHeight).
		Msg("weather reading stored")

	return rd, nil
}

// History returns the center's readings over the trailing number of days.
func (s *Service) History(ctx context.Context, centerID string, days int) ([]domain.WeatherReading, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.store.ReadingsSince(ctx, centerID, since)
}
