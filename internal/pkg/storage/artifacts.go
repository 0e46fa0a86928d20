package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
)

const (
	flightDataBase   = "flight_data"
	noDataRoutesBase = "no_data_routes"
	failedRoutesBase = "failed_routes"
)

// ArtifactNames returns the flight data, no-data and failed routes file names
// for a run tag.
func ArtifactNames(tag string) (flightData, noData, failed string) {
	suffix := ""
	if tag != "" {
		suffix = "_" + tag
	}

	return flightDataBase + suffix + ".json",
		noDataRoutesBase + suffix + ".json",
		failedRoutesBase + suffix + ".json"
}

// Artifacts holds the three outputs of one crawl run.
type Artifacts struct {
	FlightData   *ArrayFile
	NoDataRoutes *ArrayFile
	FailedRoutes *ArrayFile
}

// OpenArtifacts prepares the artifacts of a run in dir. Files left by an
// earlier run under the same names are removed so every artifact reflects
// this run only.
func OpenArtifacts(dir, tag string) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	flightData, noData, failed := ArtifactNames(tag)

	a := &Artifacts{
		FlightData:   NewArrayFile(filepath.Join(dir, flightData)),
		NoDataRoutes: NewArrayFile(filepath.Join(dir, noData)),
		FailedRoutes: NewArrayFile(filepath.Join(dir, failed)),
	}

	for _, f := range a.files() {
		if err := os.Remove(f.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale artifact: %w", err)
		}
	}

	return a, nil
}

func (a *Artifacts) files() []*ArrayFile {
	return []*ArrayFile{a.FlightData, a.NoDataRoutes, a.FailedRoutes}
}

func (a *Artifacts) AppendFlightData(group []dto.FlightOffer) error {
	return a.FlightData.Append(group)
}

func (a *Artifacts) AppendNoData(record dto.RouteRecord) error {
	return a.NoDataRoutes.Append(record)
}

func (a *Artifacts) AppendFailed(record dto.RouteRecord) error {
	return a.FailedRoutes.Append(record)
}

func (a *Artifacts) Close() error {
	var errs []error
	for _, f := range a.files() {
		errs = append(errs, f.Close())
	}

	return errors.Join(errs...)
}

// ReadRouteRecords reads a no-data or failed routes artifact.
func ReadRouteRecords(path string) ([]dto.RouteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route records: %w", err)
	}

	var records []dto.RouteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode route records %s: %w", path, err)
	}

	return records, nil
}

// RoutesFromRecords turns route records back into a route list, keeping order.
func RoutesFromRecords(records []dto.RouteRecord) []dto.Route {
	routes := make([]dto.Route, len(records))
	for i, record := range records {
		routes[i] = dto.Route{
			DepartureCity: record.DepartureCity,
			ArrivalCity:   record.ArrivalCity,
		}
	}

	return routes
}
