package weather

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the location does not resolve or the
// forecast source has no samples for it.
var ErrNotFound = errors.New("location not found")

// TransportError reports a failed upstream call: network failure, non-success
// status, malformed payload, open circuit or timeout. The message is meant for
// logs; it never carries request URLs or credentials.
type TransportError struct {
	Op       string // "resolve" or "forecast"
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LocationResolver maps a free-text place name to coordinates.
// found is false, with a nil error, when the upstream reports no match.
type LocationResolver interface {
	Name() string
	Resolve(ctx context.Context, query string) (coords Coordinates, found bool, err error)
}

// ForecastSource abstracts a forecast upstream (e.g. OpenWeatherMap, Open-Meteo).
type ForecastSource interface {
	Name() string
	FetchForecast(ctx context.Context, coords Coordinates) (Forecast, error)
}

// HistoryRecorder receives successful queries.
type HistoryRecorder interface {
	AddCity(ctx context.Context, name string) error
}
