package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// readingRetention bounds how much per-center history is kept. Rows older
// than this are pruned on each insert.
const readingRetention = time.Hour

// InsertReading appends a reading and prunes the center's rows that fell out
// of the retention window.
func (r *Repos) InsertReading(ctx context.Context, rd *domain.WeatherReading) error {
	if rd.ID == "" {
		rd.ID = uuid.New().String()
	}
	if rd.RecordedAt.IsZero() {
		rd.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM weather_readings WHERE center_id = $1 AND recorded_at < $2`,
		rd.CenterID, rd.RecordedAt.Add(-readingRetention))
	if err != nil {
		return fmt.Errorf("prune readings: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO weather_readings (
			id, center_id, temperature, humidity, pressure,
			wind_speed, wind_direction, weather_condition, visibility,
			precipitation, wave_height, current_speed, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rd.ID, rd.CenterID, rd.Temperature, rd.Humidity, rd.Pressure,
		rd.WindSpeed, rd.WindDirection, rd.Condition, rd.Visibility,
		rd.Precipitation, rd.WaveHeight, rd.CurrentSpeed, rd.RecordedAt)
	return err
}

func (r *Repos) LatestReading(ctx context.Context, centerID string) (*domain.WeatherReading, error) {
	var rd domain.WeatherReading
	err := r.db.GetContext(ctx, &rd,
		`SELECT * FROM weather_readings
		 WHERE center_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT 1`, centerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("no weather reading for center %s", centerID)
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *Repos) ReadingsSince(ctx context.Context, centerID string, since time.Time) ([]domain.WeatherReading, error) {
	var out []domain.WeatherReading
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM weather_readings
		 WHERE center_id = $1 AND recorded_at >= $2
		 ORDER BY recorded_at DESC`, centerID, since)
	return out, err
}
