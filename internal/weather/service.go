package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bertrandstanley/Weather-Dashboard/internal/metrics"
)

// DefaultUpstreamTimeout bounds resolve + fetch for a single query.
const DefaultUpstreamTimeout = 10 * time.Second

// Service orchestrates resolve -> fetch -> aggregate and records successful
// queries in the search history.
type Service struct {
	resolver LocationResolver
	source   ForecastSource
	history  HistoryRecorder
	tz       *time.Location
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every successful query in h.
func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) { s.history = h }
}

// WithTimezone sets the zone used for day bucketing and date formatting.
func WithTimezone(tz *time.Location) Option {
	return func(s *Service) {
		if tz != nil {
			s.tz = tz
		}
	}
}

// WithTimeout bounds the upstream part of each query.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new Service.
func NewService(resolver LocationResolver, source ForecastSource, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		source:   source,
		tz:       time.Local,
		timeout:  DefaultUpstreamTimeout,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryWeather returns current conditions and a daily forecast for name.
// It returns ErrNotFound when the location does not resolve or no samples are
// available, and a *TransportError when an upstream call fails. History is
// only recorded on success, and a history failure never fails the query.
func (s *Service) QueryWeather(ctx context.Context, name string) (Result, error) {
	result, err := s.query(ctx, name)
	switch {
	case err == nil:
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	case errors.Is(err, ErrNotFound):
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return Result{}, err
	default:
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeTransportError).Inc()
		return Result{}, err
	}

	if s.history != nil {
		if herr := s.history.AddCity(ctx, name); herr != nil {
			s.logger.Warnw("failed to record search history", "city", name, "error", herr)
		}
	}
	return result, nil
}

func (s *Service) query(ctx context.Context, name string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coords, found, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		s.logger.Errorw("location lookup failed", "city", name, "error", err)
		return Result{}, asTransportError(err, "resolve", s.resolver.Name())
	}
	if !found {
		s.logger.Infow("city not found", "city", name)
		return Result{}, ErrNotFound
	}

	fc, err := s.source.FetchForecast(ctx, coords)
	if err != nil {
		s.logger.Errorw("forecast fetch failed", "city", name, "provider", s.source.Name(), "error", err)
		return Result{}, asTransportError(err, "forecast", s.source.Name())
	}

	location := fc.City
	if location == "" {
		location = coords.Name
	}

	result, ok := Aggregate(location, fc.Samples, s.tz)
	if !ok {
		s.logger.Infow("forecast source returned no samples", "city", name, "provider", s.source.Name())
		return Result{}, ErrNotFound
	}

	s.logger.Debugw("weather query complete", "city", name, "location", location, "days", len(result.Forecast))
	return result, nil
}

// Probe resolves name without fetching a forecast or recording history.
// It is used by the periodic upstream health check.
func (s *Service) Probe(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, found, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return asTransportError(err, "resolve", s.resolver.Name())
	}
	if !found {
		return fmt.Errorf("probe %q: %w", strings.TrimSpace(name), ErrNotFound)
	}
	return nil
}

// ProviderName reports the resolver's name for probe metrics.
func (s *Service) ProviderName() string {
	return s.resolver.Name()
}

func asTransportError(err error, op, provider string) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Provider: provider, Err: err}
}
