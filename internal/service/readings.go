package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/hub"
)

// ReadingFromMQTT ingests one sensor observation published on
// safety/readings/<center_id>. The reading is stored, fanned out to live
// subscribers and fed through the flag engine.
func (s *Services) ReadingFromMQTT(ctx context.Context, topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	centerID := parts[len(parts)-1]
	if centerID == "" {
		return domain.Validationf("topic %q carries no center id", topic)
	}

	var r struct {
		Temperature   float64   `json:"temperature"`
		Humidity      float64   `json:"humidity"`
		Pressure      float64   `json:"pressure"`
		WindSpeed     float64   `json:"wind_speed"`
		WindDirection float64   `json:"wind_direction"`
		Condition     string    `json:"weather_condition"`
		Visibility    float64   `json:"visibility"`
		Precipitation float64   `json:"precipitation"`
		WaveHeight    float64   `json:"wave_height"`
		CurrentSpeed  float64   `json:"current_speed"`
		RecordedAt    time.Time `json:"recorded_at"`
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		return domain.Validationf("malformed reading payload: %v", err)
	}
	if _, err := s.Repos.CenterByID(ctx, centerID); err != nil {
		return err
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}

	reading := &domain.WeatherReading{
		CenterID:      centerID,
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
		Pressure:      r.Pressure,
		WindSpeed:     r.WindSpeed,
		WindDirection: r.WindDirection,
		Condition:     r.Condition,
		Visibility:    r.Visibility,
		Precipitation: r.Precipitation,
		WaveHeight:    r.WaveHeight,
		CurrentSpeed:  r.CurrentSpeed,
		RecordedAt:    r.RecordedAt,
	}
	if err := s.Repos.InsertReading(ctx, reading); err != nil {
		return err
	}
	s.Hub.PublishCenter(centerID, hub.EventWeatherUpdate, reading)

	_, err := s.Engine.AutoUpdate(ctx, centerID)
	return err
}
