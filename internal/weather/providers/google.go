package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/bertrandstanley/Weather-Dashboard/internal/common"
	"github.com/bertrandstanley/Weather-Dashboard/internal/metrics"
	"github.com/bertrandstanley/Weather-Dashboard/internal/weather"
)

// GoogleGeocoder implements weather.LocationResolver with the Google Maps
// geocoding API via github.com/kelvins/geocoder.
type GoogleGeocoder struct {
	name    string
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the library-level API key.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name:    "google",
		geocode: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Resolve geocodes query as a free-text city. The library call is not
// context-aware, so it is raced against ctx. The library indexes the first
// result without checking for unrecognized statuses; a panic there is
// reported as a transport error.
func (g *GoogleGeocoder) Resolve(ctx context.Context, query string) (weather.Coordinates, bool, error) {
	type outcome struct {
		loc geocoder.Location
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("geocoder panic: %v", r)}
			}
		}()
		// The library only swaps spaces for '+' when building the URL.
		loc, err := g.geocode(geocoder.Address{City: url.QueryEscape(query)})
		done <- outcome{loc: loc, err: err}
	}()

	var res outcome
	select {
	case <-ctx.Done():
		metrics.UpstreamRequestsTotal.WithLabelValues(g.name, "resolve", "error").Inc()
		return weather.Coordinates{}, false, &weather.TransportError{Op: "resolve", Provider: g.name, Err: ctx.Err()}
	case res = <-done:
	}

	if res.err != nil {
		if isZeroResults(res.err) {
			metrics.UpstreamRequestsTotal.WithLabelValues(g.name, "resolve", "ok").Inc()
			return weather.Coordinates{}, false, nil
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(g.name, "resolve", "error").Inc()
		return weather.Coordinates{}, false, &weather.TransportError{Op: "resolve", Provider: g.name, Err: redactURL(res.err)}
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(g.name, "resolve", "ok").Inc()

	if res.loc.Latitude == 0 && res.loc.Longitude == 0 {
		return weather.Coordinates{}, false, nil
	}

	return weather.Coordinates{
		Name:      query,
		Latitude:  res.loc.Latitude,
		Longitude: res.loc.Longitude,
	}, true, nil
}

// isZeroResults matches the library's ZERO_RESULTS error ("No results found.").
func isZeroResults(err error) bool {
	return common.HasAny(strings.ToLower(err.Error()), "no results found", "zero_results")
}
