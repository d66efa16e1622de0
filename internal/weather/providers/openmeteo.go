package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bertrandstanley/Weather-Dashboard/internal/weather"
)

const (
	defaultOpenMeteoBaseURL      = "https://api.open-meteo.com"
	defaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com"

	// Open-Meteo reports hourly; keep every third row for a 3-hour cadence.
	openMeteoStride = 3
	openMeteoHours  = 6 * 24
)

// OpenMeteoProvider implements weather.LocationResolver and
// weather.ForecastSource for Open-Meteo. No API key is required.
type OpenMeteoProvider struct {
	upstream
	baseURL      string
	geocodingURL string
}

func NewOpenMeteoProvider(client *http.Client, opts ...Option) *OpenMeteoProvider {
	o := options{
		baseURL:      defaultOpenMeteoBaseURL,
		geocodingURL: defaultOpenMeteoGeocodingURL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &OpenMeteoProvider{
		upstream:     newUpstream("openmeteo", client, o.maxRetries),
		baseURL:      o.baseURL,
		geocodingURL: o.geocodingURL,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Resolve returns the top geocoding search hit for query.
func (p *OpenMeteoProvider) Resolve(ctx context.Context, query string) (weather.Coordinates, bool, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", "1")
		values.Set("format", "json")

		u := fmt.Sprintf("%s/v1/search?%s", p.geocodingURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	// "results" is omitted entirely when nothing matches.
	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
			Admin1      string  `json:"admin1"`
		} `json:"results"`
	}
	if err := p.getJSON(ctx, "resolve", buildRequest, &payload); err != nil {
		return weather.Coordinates{}, false, err
	}

	if len(payload.Results) == 0 {
		return weather.Coordinates{}, false, nil
	}

	m := payload.Results[0]
	return weather.Coordinates{
		Name:      m.Name,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Country:   m.CountryCode,
		Region:    m.Admin1,
	}, true, nil
}

// FetchForecast returns six days of samples at a 3-hour cadence, starting at
// the current hour.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.Forecast, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
		values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code,is_day")
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
		values.Set("timeformat", "unixtime")
		values.Set("forecast_hours", strconv.Itoa(openMeteoHours))

		u := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Hourly struct {
			Time        []int64   `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			Humidity    []float64 `json:"relative_humidity_2m"`
			WindSpeed   []float64 `json:"wind_speed_10m"`
			WeatherCode []int     `json:"weather_code"`
			IsDay       []int     `json:"is_day"`
		} `json:"hourly"`
	}
	if err := p.getJSON(ctx, "forecast", buildRequest, &payload); err != nil {
		return weather.Forecast{}, err
	}

	h := payload.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.Humidity) != n || len(h.WindSpeed) != n ||
		len(h.WeatherCode) != n || len(h.IsDay) != n {
		return weather.Forecast{}, &weather.TransportError{
			Op:       "forecast",
			Provider: p.name,
			Err:      fmt.Errorf("%w: hourly series have mismatched lengths", errMalformed),
		}
	}

	samples := make([]weather.Sample, 0, n/openMeteoStride+1)
	for i := 0; i < n; i += openMeteoStride {
		icon, desc := mapOpenMeteoCondition(h.WeatherCode[i], h.IsDay[i] == 1)
		samples = append(samples, weather.Sample{
			Timestamp:    time.Unix(h.Time[i], 0).UTC(),
			TemperatureF: h.Temperature[i],
			WindSpeedMph: h.WindSpeed[i],
			HumidityPct:  h.Humidity[i],
			IconCode:     icon,
			Description:  desc,
		})
	}

	return weather.Forecast{Samples: samples}, nil
}

// mapOpenMeteoCondition translates a WMO weather code into an
// OpenWeatherMap-style icon code and description so the client can render
// either source the same way.
func mapOpenMeteoCondition(code int, day bool) (string, string) {
	var icon, desc string
	switch {
	case code == 0:
		icon, desc = "01", "clear sky"
	case code == 1:
		icon, desc = "02", "mainly clear"
	case code == 2:
		icon, desc = "03", "partly cloudy"
	case code == 3:
		icon, desc = "04", "overcast clouds"
	case code == 45 || code == 48:
		icon, desc = "50", "fog"
	case code >= 51 && code <= 57:
		icon, desc = "09", "drizzle"
	case code >= 61 && code <= 67:
		icon, desc = "10", "rain"
	case code >= 71 && code <= 77:
		icon, desc = "13", "snow"
	case code >= 80 && code <= 82:
		icon, desc = "09", "rain showers"
	case code == 85 || code == 86:
		icon, desc = "13", "snow showers"
	case code >= 95:
		icon, desc = "11", "thunderstorm"
	default:
		return "", "unknown"
	}

	if day {
		return icon + "d", desc
	}
	return icon + "n", desc
}
