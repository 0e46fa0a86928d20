package replay

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider/providerutils"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider/skyscanner"
)

const ProviderName = "replay"

// Provider answers searches with searchFlights bodies recorded on disk, for
// offline crawls against a known data set.
type Provider struct {
	Name string
	Dir  string
}

func NewProvider(config flightprovider.FlightProviderConfig) *Provider {
	return &Provider{
		Name: ProviderName,
		Dir:  config.SearchAPIURL,
	}
}

// Search reads <dir>/<ORIGIN>_<DEST>_<DATE>.json, or <dir>/<ORIGIN>_<DEST>.json
// when no dated recording exists.
func (p *Provider) Search(ctx context.Context, criteria dto.SearchCriteria) (flightprovider.FetchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return flightprovider.FetchOutcome{}, err
	}

	candidates := []string{
		filepath.Join(p.Dir, fmt.Sprintf("%s_%s_%s.json", criteria.Origin, criteria.Destination, criteria.DepartureDate)),
		filepath.Join(p.Dir, fmt.Sprintf("%s_%s.json", criteria.Origin, criteria.Destination)),
	}

	for _, path := range candidates {
		body, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return flightprovider.FetchOutcome{}, fmt.Errorf("failed to read recording: %w", err)
		}

		slog.DebugContext(ctx, "replaying recorded response", slog.String("file", path))

		return skyscanner.ParseSearchResponse(body)
	}

	return flightprovider.Transient(providerutils.ErrRecordingNotFound.Wrap(
		fmt.Errorf("%s -> %s on %s", criteria.Origin, criteria.Destination, criteria.DepartureDate))), nil
}
