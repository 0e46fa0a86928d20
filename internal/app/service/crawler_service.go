package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/logger"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/metrics"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/utils"
	"github.com/redis/go-redis/v9"
)

type AirportResolver interface {
	Resolve(name string) (string, error)
}

type OfferCacher interface {
	GetCacheKey(req dto.SearchCriteria) string
	GetOffers(ctx context.Context, key string) ([]dto.Itinerary, error)
	SetOffers(ctx context.Context, key string, itineraries []dto.Itinerary, expiration time.Duration) error
}

// OutcomeSink persists route outcomes as soon as they are known.
type OutcomeSink interface {
	AppendFlightData(group []dto.FlightOffer) error
	AppendNoData(record dto.RouteRecord) error
	AppendFailed(record dto.RouteRecord) error
}

// CrawlJob is one pass over routes[From:To] for a single crawl date.
type CrawlJob struct {
	Routes       []dto.Route
	From         int
	To           int
	CrawlingDate string
	Sink         OutcomeSink
}

type CrawlerService struct {
	Provider        flightprovider.FlightProvider
	Resolver        AirportResolver
	Cache           OfferCacher
	Metrics         *metrics.Metrics
	NumAPIAttempts  int
	APIRequestWait  time.Duration
	RouteDelay      time.Duration
	CacheExpiration time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewCrawlerService builds a crawler without cache and metrics; set Cache and
// Metrics on the result to enable them.
func NewCrawlerService(provider flightprovider.FlightProvider,
	resolver AirportResolver, numAPIAttempts int,
	apiRequestWait time.Duration, routeDelay time.Duration) *CrawlerService {
	return &CrawlerService{
		Provider:       provider,
		Resolver:       resolver,
		NumAPIAttempts: numAPIAttempts,
		APIRequestWait: apiRequestWait,
		RouteDelay:     routeDelay,
		sleep:          sleepContext,
		now:            time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Crawl visits every route of the job in order and gives each exactly one
// outcome: its offers, a no-data record or a failed record. Outcomes are
// handed to the sink before the next route starts.
//
// A returned error terminates the run: an unknown airport, a cancelled
// context, a sink failure or a provider response that cannot be understood.
// The summary then covers the routes finished so far.
func (s *CrawlerService) Crawl(ctx context.Context, job CrawlJob) (summary dto.CrawlSummary, err error) {
	summary = dto.CrawlSummary{
		CrawlingDate: job.CrawlingDate,
		From:         job.From,
		To:           job.To,
		StartedAt:    s.clock(),
	}

	defer func() {
		summary.FinishedAt = s.clock()
	}()

	if job.From < 0 || job.To > len(job.Routes) || job.From > job.To {
		return summary, fmt.Errorf("%w: [%d, %d) of %d routes", ErrInvalidRange, job.From, job.To, len(job.Routes))
	}

	total := len(job.Routes)

	for idx := job.From; idx < job.To; idx++ {
		routeCtx := logger.WithRouteIndex(ctx, idx)
		route := job.Routes[idx]

		slog.InfoContext(routeCtx, "crawling route",
			slog.String("departure_city", route.DepartureCity),
			slog.String("arrival_city", route.ArrivalCity),
			slog.Int("route_number", idx+1),
			slog.Int("total_routes", total))

		resolved, err := s.resolve(route)
		if err != nil {
			return summary, fmt.Errorf("route %d: %w", idx+1, err)
		}

		outcome, offers, err := s.crawlRoute(routeCtx, resolved, job, &summary)
		if err != nil {
			return summary, fmt.Errorf("route %d: %w", idx+1, err)
		}

		summary.Record(outcome)
		summary.Offers += offers

		if s.Metrics != nil {
			s.Metrics.ObserveRoute(string(outcome), offers)
		}

		if err := s.wait(ctx, s.RouteDelay); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (s *CrawlerService) resolve(route dto.Route) (dto.ResolvedRoute, error) {
	origin, err := s.Resolver.Resolve(route.DepartureCity)
	if err != nil {
		return dto.ResolvedRoute{}, err
	}

	arrival, err := s.Resolver.Resolve(route.ArrivalCity)
	if err != nil {
		return dto.ResolvedRoute{}, err
	}

	return dto.ResolvedRoute{
		Route:       route,
		OriginCode:  origin,
		ArrivalCode: arrival,
	}, nil
}

func (s *CrawlerService) crawlRoute(ctx context.Context,
	route dto.ResolvedRoute,
	job CrawlJob,
	summary *dto.CrawlSummary,
) (dto.RouteOutcome, int, error) {
	criteria := dto.NewSearchCriteria(route.OriginCode, route.ArrivalCode, job.CrawlingDate)

	outcome, err := s.fetch(ctx, criteria, summary)
	if err != nil {
		return "", 0, err
	}

	switch outcome.Kind {
	case flightprovider.OutcomeSuccess:
		offers := make([]dto.FlightOffer, len(outcome.Itineraries))
		for i, it := range outcome.Itineraries {
			offers[i] = dto.NewFlightOffer(route, job.CrawlingDate, it)
		}

		if err := job.Sink.AppendFlightData(offers); err != nil {
			return "", 0, fmt.Errorf("persist flight data: %w", err)
		}

		cheapest := cheapestOffer(offers)
		slog.InfoContext(ctx, "route crawled",
			slog.String("origin", route.OriginCode),
			slog.String("destination", route.ArrivalCode),
			slog.Int("offers", len(offers)),
			slog.String("cheapest_price", utils.FormatEuro(cheapest.PriceEUR)),
			slog.String("cheapest_duration", utils.ConvertMinutesToDuration(int64(cheapest.FlightDuration))))

		return dto.OutcomeSuccess, len(offers), nil

	case flightprovider.OutcomeEmpty:
		slog.InfoContext(ctx, "no data for route, appending to no data routes",
			slog.String("origin", route.OriginCode),
			slog.String("destination", route.ArrivalCode))

		if err := job.Sink.AppendNoData(dto.NewRouteRecord(route, job.CrawlingDate)); err != nil {
			return "", 0, fmt.Errorf("persist no data route: %w", err)
		}

		return dto.OutcomeNoData, 0, nil

	default:
		slog.WarnContext(ctx, "route failed, appending to failed routes",
			slog.String("origin", route.OriginCode),
			slog.String("destination", route.ArrivalCode),
			slog.String("outcome", outcome.Kind.String()),
			slog.Any("error", outcome.Err))

		if err := job.Sink.AppendFailed(dto.NewRouteRecord(route, job.CrawlingDate)); err != nil {
			return "", 0, fmt.Errorf("persist failed route: %w", err)
		}

		return dto.OutcomeFailed, 0, nil
	}
}

func cheapestOffer(offers []dto.FlightOffer) dto.FlightOffer {
	if len(offers) == 0 {
		return dto.FlightOffer{}
	}

	cheapest := offers[0]
	for _, offer := range offers[1:] {
		if offer.PriceEUR < cheapest.PriceEUR {
			cheapest = offer
		}
	}

	return cheapest
}

// fetch returns the final classified outcome of a route. A transient first
// attempt is retried up to NumAPIAttempts times, each retry preceded by
// APIRequestWait. Retries stop on success or on a permanent error. An empty
// answer seen during retries does not stop them, but turns an otherwise
// exhausted route into a no-data route.
func (s *CrawlerService) fetch(ctx context.Context,
	criteria dto.SearchCriteria,
	summary *dto.CrawlSummary,
) (flightprovider.FetchOutcome, error) {
	cacheKey := ""
	if s.Cache != nil {
		cacheKey = s.Cache.GetCacheKey(criteria)

		itineraries, err := s.Cache.GetOffers(ctx, cacheKey)
		if err == nil {
			summary.CacheHits++
			if s.Metrics != nil {
				s.Metrics.CacheHitsTotal.Inc()
			}

			return flightprovider.Success(itineraries), nil
		}

		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "failed to get offers from cache", slog.String("error", err.Error()))
		}
	}

	outcome, err := s.attempt(ctx, criteria, summary)
	if err != nil {
		return flightprovider.FetchOutcome{}, err
	}

	if outcome.Kind == flightprovider.OutcomeTransient {
		slog.InfoContext(ctx, "transient error while extracting route data",
			slog.Any("error", outcome.Err))

		sawEmpty := false
		for i := 0; i < s.NumAPIAttempts; i++ {
			slog.InfoContext(ctx, "waiting before retry",
				slog.Int("retry", i+1),
				slog.Duration("wait", s.APIRequestWait))

			if err := s.wait(ctx, s.APIRequestWait); err != nil {
				return flightprovider.FetchOutcome{}, err
			}

			outcome, err = s.attempt(ctx, criteria, summary)
			if err != nil {
				return flightprovider.FetchOutcome{}, err
			}

			if outcome.Kind == flightprovider.OutcomeEmpty {
				sawEmpty = true
				continue
			}

			if outcome.Kind != flightprovider.OutcomeTransient {
				break
			}

			slog.InfoContext(ctx, "retry failed",
				slog.Int("attempts", i+2),
				slog.Int("max_attempts", s.NumAPIAttempts+1),
				slog.Any("error", outcome.Err))
		}

		if outcome.Kind == flightprovider.OutcomeTransient && sawEmpty {
			outcome = flightprovider.Empty()
		}
	}

	if s.Cache != nil && outcome.Usable() {
		err := s.Cache.SetOffers(ctx, cacheKey, outcome.Itineraries, s.CacheExpiration)
		if err != nil {
			slog.WarnContext(ctx, "failed to set offers to cache", slog.String("error", err.Error()))
		}
	}

	return outcome, nil
}

func (s *CrawlerService) attempt(ctx context.Context,
	criteria dto.SearchCriteria,
	summary *dto.CrawlSummary,
) (flightprovider.FetchOutcome, error) {
	slog.DebugContext(ctx, "sending api request",
		slog.String("origin", criteria.Origin),
		slog.String("destination", criteria.Destination))

	start := s.clock()
	outcome, err := s.Provider.Search(ctx, criteria)
	summary.APICalls++

	if err != nil {
		return flightprovider.FetchOutcome{}, fmt.Errorf("search flights %s-%s: %w",
			criteria.Origin, criteria.Destination, err)
	}

	if s.Metrics != nil {
		s.Metrics.ObserveAPICall(outcome.Kind.String(), s.clock().Sub(start))
	}

	return outcome, nil
}

func (s *CrawlerService) wait(ctx context.Context, d time.Duration) error {
	if s.sleep == nil {
		return sleepContext(ctx, d)
	}

	return s.sleep(ctx, d)
}

func (s *CrawlerService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}

	return s.now()
}
