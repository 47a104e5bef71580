package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// UpsertForecast writes a daily forecast row, replacing the existing row for
// the same center and date.
func (r *Repos) UpsertForecast(ctx context.Context, day *domain.ForecastDay) error {
	if day.ID == "" {
		day.ID = uuid.New().String()
	}
	day.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO weather_forecasts (
			id, center_id, forecast_date, temperature_min, temperature_max,
			weather_condition, wind_speed, wind_direction,
			precipitation_probability, humidity, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (center_id, forecast_date) DO UPDATE SET
			temperature_min = EXCLUDED.temperature_min,
			temperature_max = EXCLUDED.temperature_max,
			weather_condition = EXCLUDED.weather_condition,
			wind_speed = EXCLUDED.wind_speed,
			wind_direction = EXCLUDED.wind_direction,
			precipitation_probability = EXCLUDED.precipitation_probability,
			humidity = EXCLUDED.humidity,
			created_at = EXCLUDED.created_at`,
		day.ID, day.CenterID, day.ForecastDate, day.TemperatureMin, day.TemperatureMax,
		day.Condition, day.WindSpeed, day.WindDirection,
		day.PrecipitationProbability, day.Humidity, day.CreatedAt)
	return err
}

// ForecastsByCenter returns the center's stored daily forecasts from today
// onward, in date order.
func (r *Repos) ForecastsByCenter(ctx context.Context, centerID string) ([]domain.ForecastDay, error) {
	var out []domain.ForecastDay
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM weather_forecasts
		 WHERE center_id = $1 AND forecast_date >= CURRENT_DATE
		 ORDER BY forecast_date`, centerID)
	return out, err
}
