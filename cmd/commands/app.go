package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis_rate/v10"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/config"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/service"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/airport"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flight"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider/replay"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider/skyscanner"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/metrics"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/spreadsheet"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// app holds the dependencies shared by the crawl and serve commands.
type app struct {
	cfg        config.Config
	registry   *prometheus.Registry
	redis      *redis.Client
	runService *service.RunService
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	// init validator
	if err := dto.InitValidator(); err != nil {
		return nil, fmt.Errorf("init validator: %w", err)
	}

	a := &app{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Redis.Enabled() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.Timeout,
		})

		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	provider, err := initFlightProvider(cfg, a.redis)
	if err != nil {
		a.Close()
		return nil, err
	}

	airports, err := spreadsheet.ReadAirports(cfg.Crawl.AirportsFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load airports: %w", err)
	}

	resolver := airport.NewResolver(airports)
	slog.InfoContext(ctx, "airport reference table loaded", slog.Int("search_terms", resolver.Len()))

	crawler := service.NewCrawlerService(provider, resolver,
		cfg.Crawl.NumAPIAttempts, cfg.Crawl.APIRequestWait, cfg.Crawl.RouteDelay)
	crawler.Metrics = metrics.NewMetrics(a.registry)

	a.runService = service.NewRunService(crawler,
		func() ([]dto.Route, error) {
			return spreadsheet.ReadRoutes(cfg.Crawl.RoutesFile)
		},
		func(tag string) (service.ArtifactSink, error) {
			artifacts, err := storage.OpenArtifacts(cfg.Crawl.OutputDir, tag)
			if err != nil {
				return nil, err
			}

			return artifacts, nil
		},
		cfg.Crawl.DaysAhead)

	if a.redis != nil {
		offerCache := flight.NewOfferCache(a.redis)

		crawler.Cache = offerCache
		crawler.CacheExpiration = cfg.Redis.CacheExpiration
		a.runService.Locker = offerCache
		a.runService.LockTimeout = cfg.Redis.LockTimeout
	}

	return a, nil
}

// register flight providers and pick the configured one
func initFlightProvider(cfg config.Config, redisClient *redis.Client) (flightprovider.FlightProvider, error) {
	var limiter *redis_rate.Limiter
	if redisClient != nil && cfg.Provider.RateLimitRPS > 0 {
		limiter = redis_rate.NewLimiter(redisClient)
	}

	factory := flightprovider.NewFlightProviderFactory()
	factory.AddProvider(skyscanner.ProviderName, skyscanner.NewProvider(flightprovider.FlightProviderConfig{
		SearchAPIURL: cfg.Provider.SearchAPIURL,
		APIKey:       cfg.Provider.APIKey,
		APIHost:      cfg.Provider.APIHost,
		Timeout:      cfg.Provider.Timeout,
		RateLimitRPS: cfg.Provider.RateLimitRPS,
		Limiter:      limiter,
	}))
	factory.AddProvider(replay.ProviderName, replay.NewProvider(flightprovider.FlightProviderConfig{
		SearchAPIURL: cfg.Provider.ReplayDir,
	}))

	provider, err := factory.GetProvider(cfg.Provider.Name)
	if err != nil {
		return nil, fmt.Errorf("flight provider: %w", err)
	}

	return provider, nil
}

func (a *app) Close() {
	if a.redis == nil {
		return
	}

	if err := a.redis.Close(); err != nil {
		slog.Warn("failed to close redis client", slog.String("error", err.Error()))
	}
}
