package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bertrandstanley/Weather-Dashboard/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org"

var errNoAPIKey = errors.New("openweather api key is not configured")

// OpenWeatherProvider implements weather.LocationResolver and
// weather.ForecastSource on top of OpenWeatherMap's geocoding and 5 day /
// 3 hour forecast APIs.
type OpenWeatherProvider struct {
	upstream
	apiKey  string
	baseURL string
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := options{baseURL: defaultOpenWeatherBaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	return &OpenWeatherProvider{
		upstream: newUpstream("openweathermap", client, o.maxRetries),
		apiKey:   apiKey,
		baseURL:  o.baseURL,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Resolve returns the first direct-geocoding match for query.
func (p *OpenWeatherProvider) Resolve(ctx context.Context, query string) (weather.Coordinates, bool, error) {
	if p.apiKey == "" {
		return weather.Coordinates{}, false, &weather.TransportError{Op: "resolve", Provider: p.name, Err: errNoAPIKey}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("limit", "1")
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s/geo/1.0/direct?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
		State   string  `json:"state"`
	}
	if err := p.getJSON(ctx, "resolve", buildRequest, &payload); err != nil {
		return weather.Coordinates{}, false, err
	}

	if len(payload) == 0 {
		return weather.Coordinates{}, false, nil
	}

	m := payload[0]
	return weather.Coordinates{
		Name:      m.Name,
		Latitude:  m.Lat,
		Longitude: m.Lon,
		Country:   m.Country,
		Region:    m.State,
	}, true, nil
}

// FetchForecast returns the 3-hourly imperial-unit forecast for coords.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, &weather.TransportError{Op: "forecast", Provider: p.name, Err: errNoAPIKey}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
		values.Set("appid", p.apiKey)
		values.Set("units", "imperial")

		u := fmt.Sprintf("%s/data/2.5/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []struct {
				Icon        string `json:"icon"`
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := p.getJSON(ctx, "forecast", buildRequest, &payload); err != nil {
		return weather.Forecast{}, err
	}

	samples := make([]weather.Sample, 0, len(payload.List))
	for _, item := range payload.List {
		s := weather.Sample{
			Timestamp:    time.Unix(item.Dt, 0).UTC(),
			TemperatureF: item.Main.Temp,
			WindSpeedMph: item.Wind.Speed,
			HumidityPct:  item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			s.IconCode = item.Weather[0].Icon
			s.Description = item.Weather[0].Description
		}
		samples = append(samples, s)
	}

	return weather.Forecast{
		City:    payload.City.Name,
		Samples: samples,
	}, nil
}
