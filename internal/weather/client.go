package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

// Observation is a raw weather-source sample for one coordinate, before it is
// combined with marine data and persisted as a reading.
type Observation struct {
	Temperature   float64
	Humidity      float64
	Pressure      float64
	WindSpeed     float64
	WindDirection float64
	Condition     string
	Visibility    float64 // km
	Precipitation float64 // mm over the last hour
}

// Client fetches observations from the OpenWeatherMap current-weather API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Visibility float64 `json:"visibility"` // meters
}

// FetchCurrent retrieves the current observation for a coordinate. Transient
// failures are retried with exponential backoff, bounded by the context.
func (c *Client) FetchCurrent(ctx context.Context, lat, lng float64) (*Observation, error) {
	var obs *Observation

	operation := func() error {
		o, err := c.fetchOnce(ctx, lat, lng)
		if err != nil {
			return err
		}
		obs = o
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return obs, nil
}

// ForecastSample is one 3-hour slot from the provider's 5-day forecast.
type ForecastSample struct {
	At                       time.Time
	TemperatureMin           float64
	TemperatureMax           float64
	Humidity                 float64
	Condition                string
	WindSpeed                float64
	WindDirection            float64
	PrecipitationProbability float64 // percent
}

type openWeatherForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Pop float64 `json:"pop"` // 0..1
	} `json:"list"`
}

// FetchForecast retrieves the provider's 5-day forecast in 3-hour samples.
func (c *Client) FetchForecast(ctx context.Context, lat, lng float64) ([]ForecastSample, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstreamf("forecast source returned %d", resp.StatusCode)
	}

	var body openWeatherForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	samples := make([]ForecastSample, 0, len(body.List))
	for _, item := range body.List {
		condition := ""
		if len(item.Weather) > 0 {
			condition = item.Weather[0].Main
		}
		samples = append(samples, ForecastSample{
			At:                       time.Unix(item.Dt, 0).UTC(),
			TemperatureMin:           item.Main.TempMin,
			TemperatureMax:           item.Main.TempMax,
			Humidity:                 item.Main.Humidity,
			Condition:                condition,
			WindSpeed:                item.Wind.Speed,
			WindDirection:            item.Wind.Deg,
			PrecipitationProbability: item.Pop * 100,
		})
	}
	return samples, nil
}

func (c *Client) fetchOnce(ctx context.Context, lat, lng float64) (*Observation, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather source returned %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	condition := ""
	if len(body.Weather) > 0 {
		condition = body.Weather[0].Main
	}

	return &Observation{
		Temperature:   body.Main.Temp,
		Humidity:      body.Main.Humidity,
		Pressure:      body.Main.Pressure,
		WindSpeed:     body.Wind.Speed,
		WindDirection: body.Wind.Deg,
		Condition:     condition,
		Visibility:    body.Visibility / 1000,
		Precipitation: body.Rain.OneHour,
	}, nil
}
