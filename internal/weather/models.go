package weather

import (
	"time"
)

// DateLayout is the calendar-day format used on every WeatherRecord.
const DateLayout = "01/02/2006"

// Coordinates is a resolved geographic position for a place name.
type Coordinates struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country"`
	Region    string  `json:"state,omitempty"`
}

// Sample is a single upstream reading. Sources return samples ordered
// ascending by Timestamp at a fixed 3-hour interval.
type Sample struct {
	Timestamp    time.Time
	TemperatureF float64
	WindSpeedMph float64
	HumidityPct  float64
	IconCode     string
	Description  string
}

// Forecast is the raw output of a ForecastSource.
type Forecast struct {
	// City is the upstream-reported place name, empty if the source has none.
	City    string
	Samples []Sample
}

// WeatherRecord is one derived per-day (or current) view.
type WeatherRecord struct {
	LocationName string  `json:"city"`
	Date         string  `json:"date"` // MM/DD/YYYY
	TemperatureF float64 `json:"tempF"`
	WindSpeedMph float64 `json:"windSpeed"`
	HumidityPct  float64 `json:"humidity"`
	IconCode     string  `json:"icon"`
	Description  string  `json:"iconDescription"`
}

// Result is the response to a weather query.
type Result struct {
	Current  WeatherRecord   `json:"current"`
	Forecast []WeatherRecord `json:"forecast"`
}

func newRecord(location string, date time.Time, s Sample) WeatherRecord {
	return WeatherRecord{
		LocationName: location,
		Date:         date.Format(DateLayout),
		TemperatureF: s.TemperatureF,
		WindSpeedMph: s.WindSpeedMph,
		HumidityPct:  s.HumidityPct,
		IconCode:     s.IconCode,
		Description:  s.Description,
	}
}
