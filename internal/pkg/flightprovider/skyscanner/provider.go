package skyscanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-resty/resty/v2"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider/providerutils"
)

const (
	ProviderName = "skyscanner"

	DefaultSearchAPIURL = "https://skyscanner50.p.rapidapi.com/api/v1/searchFlights"
	DefaultAPIHost      = "skyscanner50.p.rapidapi.com"
)

type Provider struct {
	Name         string
	SearchAPIURL string
	APIKey       string
	APIHost      string
	Limiter      *redis_rate.Limiter
	RateLimitRPS int
	client       *resty.Client
}

func NewProvider(config flightprovider.FlightProviderConfig) *Provider {
	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeader("Accept", "application/json")

	return &Provider{
		Name:         ProviderName,
		SearchAPIURL: config.SearchAPIURL,
		APIKey:       config.APIKey,
		APIHost:      config.APIHost,
		Limiter:      config.Limiter,
		RateLimitRPS: config.RateLimitRPS,
		client:       client,
	}
}

// Search sends one searchFlights request and classifies the answer.
func (p *Provider) Search(ctx context.Context, criteria dto.SearchCriteria) (flightprovider.FetchOutcome, error) {
	if err := criteria.Validate(); err != nil {
		return flightprovider.FetchOutcome{}, err
	}

	if outcome, limited := p.checkRateLimit(ctx); limited {
		return outcome, nil
	}

	start := time.Now()
	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origin":      criteria.Origin,
			"destination": criteria.Destination,
			"date":        criteria.DepartureDate,
			"adults":      strconv.Itoa(criteria.Adults),
			"cabinClass":  criteria.CabinClass,
			"filter":      criteria.Filter,
			"currency":    criteria.Currency,
		}).
		SetHeader("X-RapidAPI-Key", p.APIKey).
		SetHeader("X-RapidAPI-Host", p.APIHost).
		Get(p.SearchAPIURL)
	if err != nil {
		if ctx.Err() != nil {
			return flightprovider.FetchOutcome{}, fmt.Errorf("search flights: %w", ctx.Err())
		}

		slog.WarnContext(ctx, "skyscanner request failed", slog.String("error", err.Error()))
		return flightprovider.Transient(providerutils.ErrProviderInternalError.Wrap(err)), nil
	}

	slog.DebugContext(ctx, "skyscanner responded",
		slog.Int("status", res.StatusCode()),
		slog.Duration("latency", time.Since(start)))

	return ClassifyResponse(res.StatusCode(), res.Body())
}

func (p *Provider) checkRateLimit(ctx context.Context) (flightprovider.FetchOutcome, bool) {
	if p.Limiter == nil || p.RateLimitRPS <= 0 {
		return flightprovider.FetchOutcome{}, false
	}

	res, err := p.Limiter.Allow(ctx, fmt.Sprintf("limit:%s", p.Name),
		redis_rate.PerSecond(p.RateLimitRPS))
	if err != nil {
		return flightprovider.Transient(fmt.Errorf("failed to rate limit: %w", err)), true
	}

	if res.Allowed == 0 {
		return flightprovider.Transient(providerutils.ErrProviderRateLimitExceeded), true
	}

	return flightprovider.FetchOutcome{}, false
}

// ClassifyResponse maps an HTTP status and body to a fetch outcome.
func ClassifyResponse(status int, body []byte) (flightprovider.FetchOutcome, error) {
	switch {
	case status == http.StatusTooManyRequests:
		return flightprovider.Transient(providerutils.ErrProviderRateLimitExceeded.Wrap(
			fmt.Errorf("status %d", status))), nil
	case status >= http.StatusInternalServerError:
		return flightprovider.Transient(providerutils.ErrProviderInternalError.Wrap(
			fmt.Errorf("status %d", status))), nil
	case status >= http.StatusBadRequest:
		return flightprovider.Permanent(providerutils.ErrProviderRejected.Wrap(
			fmt.Errorf("status %d: %s", status, truncate(body, 200)))), nil
	}

	return ParseSearchResponse(body)
}

// ParseSearchResponse reads the "data" list of a searchFlights body. A body
// without "data" is transient, a body that is not the expected JSON is an error.
func ParseSearchResponse(body []byte) (flightprovider.FetchOutcome, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return flightprovider.FetchOutcome{}, providerutils.ErrUnexpectedSchema.Wrap(
			fmt.Errorf("decode response: %w", err))
	}

	raw, ok := fields["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return flightprovider.Transient(missingDataError(body)), nil
	}

	var flights []Flight
	if err := json.Unmarshal(raw, &flights); err != nil {
		return flightprovider.FetchOutcome{}, providerutils.ErrUnexpectedSchema.Wrap(
			fmt.Errorf("decode data: %w", err))
	}

	itineraries, err := flightToDTO(flights)
	if err != nil {
		return flightprovider.FetchOutcome{}, err
	}

	return flightprovider.Success(itineraries), nil
}

func missingDataError(body []byte) error {
	var envelope searchFlightEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Message == nil {
		return providerutils.ErrMissingDataKey
	}

	return providerutils.ErrMissingDataKey.Wrap(fmt.Errorf("provider message: %v", envelope.Message))
}

func flightToDTO(flights []Flight) ([]dto.Itinerary, error) {
	results := make([]dto.Itinerary, len(flights))
	for i, flight := range flights {
		if len(flight.Legs) == 0 {
			return nil, providerutils.ErrUnexpectedSchema.Wrap(
				fmt.Errorf("offer %d (%s) has no legs", i, flight.ID))
		}

		leg := flight.Legs[0]
		if len(leg.Carriers) == 0 {
			return nil, providerutils.ErrUnexpectedSchema.Wrap(
				fmt.Errorf("offer %d (%s) has no carriers", i, flight.ID))
		}

		results[i] = dto.Itinerary{
			PriceAmount: flight.Price.Amount,
			Origin: dto.Airport{
				Name:        leg.Origin.Name,
				DisplayCode: leg.Origin.DisplayCode,
			},
			Destination: dto.Airport{
				Name:        leg.Destination.Name,
				DisplayCode: leg.Destination.DisplayCode,
			},
			Departure:     leg.Departure,
			Arrival:       leg.Arrival,
			Carrier:       leg.Carriers[0].Name,
			TotalDuration: flight.TotalDuration,
		}
	}
	return results, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}

	return string(body[:n]) + "..."
}
