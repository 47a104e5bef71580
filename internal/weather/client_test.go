package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const sampleBody = `{
	"main": {"temp": 28.4, "humidity": 65, "pressure": 1013},
	"wind": {"speed": 12.5, "deg": 180},
	"weather": [{"main": "Clouds"}],
	"rain": {"1h": 2.5},
	"visibility": 8000
}`

func TestFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", time.Second)
	obs, err := c.FetchCurrent(context.Background(), 36.8, 10.2)
	require.NoError(t, err)

	assert.Equal(t, 28.4, obs.Temperature)
	assert.Equal(t, 65.0, obs.Humidity)
	assert.Equal(t, 12.5, obs.WindSpeed)
	assert.Equal(t, "Clouds", obs.Condition)
	assert.Equal(t, 8.0, obs.Visibility, "visibility converts meters to km")
	assert.Equal(t, 2.5, obs.Precipitation)
}

func TestFetchCurrentNoRainField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"main":{"temp":30},"visibility":10000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	obs, err := c.FetchCurrent(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, obs.Precipitation)
	assert.Empty(t, obs.Condition)
}

func TestFetchCurrentRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	_, err := c.FetchCurrent(context.Background(), 0, 0)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestFetchCurrentRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	obs, err := c.FetchCurrent(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 28.4, obs.Temperature)
}
