package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const forecastBody = `{
	"list": [
		{"dt": 1749722400, "main": {"temp_min": 22.1, "temp_max": 24.8, "humidity": 70},
		 "weather": [{"main": "Clouds"}], "wind": {"speed": 4.2, "deg": 180}, "pop": 0.35},
		{"dt": 1749733200, "main": {"temp_min": 21.0, "temp_max": 27.3, "humidity": 65},
		 "weather": [{"main": "Clear"}], "wind": {"speed": 5.0, "deg": 200}, "pop": 0.1},
		{"dt": 1749808800, "main": {"temp_min": 19.5, "temp_max": 23.0, "humidity": 80},
		 "weather": [{"main": "Rain"}], "wind": {"speed": 7.1, "deg": 220}, "pop": 0.9}
	]
}`

func TestFetchForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	samples, err := c.FetchForecast(context.Background(), 36.8, 10.2)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	first := samples[0]
	assert.Equal(t, time.Unix(1749722400, 0).UTC(), first.At)
	assert.Equal(t, 22.1, first.TemperatureMin)
	assert.Equal(t, 24.8, first.TemperatureMax)
	assert.Equal(t, "Clouds", first.Condition)
	assert.Equal(t, 35.0, first.PrecipitationProbability, "pop is converted to percent")
	assert.Equal(t, 90.0, samples[2].PrecipitationProbability)
}

func TestGroupDailyMergesSamplesPerDay(t *testing.T) {
	day1 := time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	samples := []ForecastSample{
		{At: day2.Add(9 * time.Hour), TemperatureMin: 19.5, TemperatureMax: 23.0, Condition: "Rain", WindSpeed: 7.1, PrecipitationProbability: 90, Humidity: 80},
		{At: day1.Add(6 * time.Hour), TemperatureMin: 22.1, TemperatureMax: 24.8, Condition: "Clouds", WindSpeed: 4.2, PrecipitationProbability: 35, Humidity: 70},
		{At: day1.Add(12 * time.Hour), TemperatureMin: 21.0, TemperatureMax: 27.3, Condition: "Clear", WindSpeed: 5.0, PrecipitationProbability: 10, Humidity: 65},
	}

	days := GroupDaily("c1", samples)
	require.Len(t, days, 2)

	assert.Equal(t, day1, days[0].ForecastDate, "days come back in date order")
	assert.Equal(t, day2, days[1].ForecastDate)

	// Day one merges temperatures across its two samples but keeps the first
	// sample's condition, wind, precipitation and humidity.
	assert.Equal(t, 21.0, days[0].TemperatureMin)
	assert.Equal(t, 27.3, days[0].TemperatureMax)
	assert.Equal(t, "Clouds", days[0].Condition)
	assert.Equal(t, 4.2, days[0].WindSpeed)
	assert.Equal(t, 35.0, days[0].PrecipitationProbability)
	assert.Equal(t, 70.0, days[0].Humidity)

	assert.Equal(t, "Rain", days[1].Condition)
}

func TestUpdateForecastUpsertsDailyRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	forecasts := newMemForecasts()
	svc := NewService(NewClient(srv.URL, "k", time.Second), &memStore{}, forecasts)

	days, err := svc.UpdateForecast(context.Background(), domain.Center{ID: "c1", Name: "North Beach", Latitude: 36.8, Longitude: 10.2})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].ForecastDate.Before(days[1].ForecastDate))

	stored, err := forecasts.ForecastsByCenter(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestUpdateForecastPropagatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	forecasts := newMemForecasts()
	svc := NewService(NewClient(srv.URL, "k", time.Second), &memStore{}, forecasts)

	_, err := svc.UpdateForecast(context.Background(), domain.Center{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, forecasts.days)
}
