package weather

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// GroupDaily folds 3-hour forecast samples into one row per UTC day. The
// first sample of a day supplies condition, wind, precipitation probability
// and humidity; min/max temperatures are merged across the day's samples.
func GroupDaily(centerID string, samples []ForecastSample) []domain.ForecastDay {
	byDate := make(map[time.Time]*domain.ForecastDay)
	for _, s := range samples {
		date := s.At.Truncate(24 * time.Hour)
		day, ok := byDate[date]
		if !ok {
			byDate[date] = &domain.ForecastDay{
				CenterID:                 centerID,
				ForecastDate:             date,
				TemperatureMin:           s.TemperatureMin,
				TemperatureMax:           s.TemperatureMax,
				Condition:                s.Condition,
				WindSpeed:                s.WindSpeed,
				WindDirection:            s.WindDirection,
				PrecipitationProbability: s.PrecipitationProbability,
				Humidity:                 s.Humidity,
			}
			continue
		}
		if s.TemperatureMin < day.TemperatureMin {
			day.TemperatureMin = s.TemperatureMin
		}
		if s.TemperatureMax > day.TemperatureMax {
			day.TemperatureMax = s.TemperatureMax
		}
	}

	out := make([]domain.ForecastDay, 0, len(byDate))
	for _, day := range byDate {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ForecastDate.Before(out[j].ForecastDate) })
	return out
}

// UpdateForecast fetches the center's 5-day outlook, folds it into daily rows
// and upserts them, returning the days in date order.
func (s *Service) UpdateForecast(ctx context.Context, center domain.Center) ([]domain.ForecastDay, error) {
	samples, err := s.client.FetchForecast(ctx, center.Latitude, center.Longitude)
	if err != nil {
		return nil, err
	}

	days := GroupDaily(center.ID, samples)
	for i := range days {
		if err := s.forecasts.UpsertForecast(ctx, &days[i]); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("center_id", center.ID).
		Str("center", center.Name).
		Int("days", len(days)).
		Msg("weather forecast stored")

	return days, nil
}
