package flightprovider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
)

// config for flight provider
type FlightProviderConfig struct {
	SearchAPIURL string
	APIKey       string
	APIHost      string
	Timeout      time.Duration
	RateLimitRPS int
	Limiter      *redis_rate.Limiter
}

// OutcomeKind tags a FetchOutcome.
type OutcomeKind int

const (
	// OutcomeSuccess carries a non-empty itinerary list.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty is a well formed response without offers.
	OutcomeEmpty
	// OutcomeTransient is worth retrying after a wait.
	OutcomeTransient
	// OutcomePermanent will not improve on retry.
	OutcomePermanent
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransient:
		return "transient_error"
	case OutcomePermanent:
		return "permanent_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FetchOutcome is the classified result of one provider call. Err explains
// transient and permanent outcomes.
type FetchOutcome struct {
	Kind        OutcomeKind
	Itineraries []dto.Itinerary
	Err         error
}

// Usable reports whether the provider answered with a well formed list.
func (o FetchOutcome) Usable() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeEmpty
}

func Success(itineraries []dto.Itinerary) FetchOutcome {
	if len(itineraries) == 0 {
		return Empty()
	}

	return FetchOutcome{Kind: OutcomeSuccess, Itineraries: itineraries}
}

func Empty() FetchOutcome {
	return FetchOutcome{Kind: OutcomeEmpty}
}

func Transient(err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeTransient, Err: err}
}

func Permanent(err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomePermanent, Err: err}
}

// FlightProvider performs one fare query. A non-nil error is an unexpected
// fault that should abort the crawl; every expected failure is an outcome.
type FlightProvider interface {
	Search(ctx context.Context, criteria dto.SearchCriteria) (FetchOutcome, error)
}

type FlightProviderFactory struct {
	Provider map[string]FlightProvider
}

func NewFlightProviderFactory() *FlightProviderFactory {
	return &FlightProviderFactory{
		Provider: make(map[string]FlightProvider),
	}
}

func (f *FlightProviderFactory) AddProvider(name string, provider FlightProvider) {
	f.Provider[name] = provider
}

func (f *FlightProviderFactory) GetProvider(name string) (FlightProvider, error) {
	provider, ok := f.Provider[name]
	if !ok {
		return nil, fmt.Errorf("unknown flight provider %q, registered: %v", name, f.Names())
	}

	return provider, nil
}

func (f *FlightProviderFactory) Names() []string {
	names := make([]string, 0, len(f.Provider))
	for name := range f.Provider {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
