package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/bertrandstanley/Weather-Dashboard/internal/metrics"
)

// DefaultInterval applies when no positive probe interval is configured.
const DefaultInterval = 15 * time.Minute

// Prober checks that an upstream can still resolve a known location.
type Prober interface {
	Probe(ctx context.Context, name string) error
	ProviderName() string
}

// Scheduler periodically probes the geocoding upstream with the configured
// locations and publishes the result as the weather_upstream_up gauge.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	locations []string
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, prober Prober, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		locations: locations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("no probe locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every location concurrently. The upstream is reported up
// when at least one probe succeeds.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("running upstream probe job")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.prober.Probe(ctx, loc); err != nil {
				s.logger.Warnw("probe failed", "location", loc, "error", err)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}(loc)
	}
	wg.Wait()

	up := 0.0
	if ok > 0 {
		up = 1
	}
	metrics.UpstreamUp.WithLabelValues(s.prober.ProviderName()).Set(up)
	s.logger.Debugw("completed upstream probe job", "succeeded", ok, "total", len(s.locations))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
