package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/bertrandstanley/Weather-Dashboard/internal/api/http"
	"github.com/bertrandstanley/Weather-Dashboard/internal/config"
	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
	"github.com/bertrandstanley/Weather-Dashboard/internal/logging"
	"github.com/bertrandstanley/Weather-Dashboard/internal/scheduler"
	"github.com/bertrandstanley/Weather-Dashboard/internal/store"
	"github.com/bertrandstanley/Weather-Dashboard/internal/weather"
	"github.com/bertrandstanley/Weather-Dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	logger := zl.Sugar()

	tz, err := cfg.Location()
	if err != nil {
		logger.Fatalw("invalid time zone", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resolver, source := buildUpstreams(cfg, httpClient)

	backend, closer, err := buildHistoryBackend(ctx, cfg)
	if err != nil {
		logger.Fatalw("failed to initialize history backend", "backend", cfg.HistoryBackend, "error", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	hist := history.NewStore(backend, logging.Component(zl, "history"))
	logger.Infow("search history loaded", "backend", cfg.HistoryBackend, "entries", len(hist.List(ctx)))

	service := weather.NewService(resolver, source,
		weather.WithHistory(hist),
		weather.WithTimezone(tz),
		weather.WithTimeout(cfg.UpstreamTimeout),
		weather.WithLogger(logging.Component(zl, "weather")),
	)

	sched := scheduler.New(cfg.ProbeLocations, cfg.ProbeInterval, service, logging.Component(zl, "scheduler"))
	if err := sched.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.UpstreamTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service, hist)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	go func() {
		logger.Infow("starting server", "port", cfg.Port, "geocoder", resolver.Name(), "forecast", source.Name(), "history", cfg.HistoryBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
}

func buildUpstreams(cfg *config.AppConfig, client *http.Client) (weather.LocationResolver, weather.ForecastSource) {
	var (
		openWeather *providers.OpenWeatherProvider
		openMeteo   *providers.OpenMeteoProvider
	)
	if cfg.Geocoder == "openweather" || cfg.ForecastProvider == "openweather" {
		openWeather = providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey,
			providers.WithBaseURL(cfg.OpenWeatherBaseURL),
			providers.WithMaxRetries(cfg.UpstreamMaxRetries),
		)
	}
	if cfg.Geocoder == "openmeteo" || cfg.ForecastProvider == "openmeteo" {
		openMeteo = providers.NewOpenMeteoProvider(client,
			providers.WithBaseURL(cfg.OpenMeteoForecastURL),
			providers.WithGeocodingURL(cfg.OpenMeteoGeocodingURL),
			providers.WithMaxRetries(cfg.UpstreamMaxRetries),
		)
	}

	var resolver weather.LocationResolver
	switch cfg.Geocoder {
	case "google":
		resolver = providers.NewGoogleGeocoder(cfg.GoogleAPIKey)
	case "openmeteo":
		resolver = openMeteo
	default:
		resolver = openWeather
	}

	var source weather.ForecastSource = openWeather
	if cfg.ForecastProvider == "openmeteo" {
		source = openMeteo
	}
	return resolver, source
}

func buildHistoryBackend(ctx context.Context, cfg *config.AppConfig) (history.Backend, io.Closer, error) {
	switch cfg.HistoryBackend {
	case "memory":
		return store.NewMemoryStore(), nil, nil
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("could not parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("could not connect to Redis: %w", err)
		}
		return store.NewRedisStore(client, cfg.HistoryRedisKey), client, nil
	case "sqlite", "postgres":
		db, err := store.OpenSQL(ctx, store.Dialect(cfg.HistoryBackend), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewSQLStore(db, store.Dialect(cfg.HistoryBackend))
		if err := s.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db, nil
	default:
		return store.NewFileStore(cfg.HistoryFile), nil, nil
	}
}
