//go:build unit

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/flightprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type closingSink struct {
	memorySink
	closed bool
}

func (c *closingSink) Close() error {
	c.closed = true

	return nil
}

type runFixture struct {
	provider *flightprovider.MockFlightProvider
	sink     *closingSink
	tags     []string
	service  *RunService
}

func newRunFixture(t *testing.T, routes []dto.Route) *runFixture {
	f := &runFixture{
		provider: flightprovider.NewMockFlightProvider(t),
		sink:     &closingSink{},
	}

	crawler := newTestCrawler(f.provider, &recordedSleeps{})
	f.service = NewRunService(crawler,
		func() ([]dto.Route, error) { return routes, nil },
		func(tag string) (ArtifactSink, error) {
			f.tags = append(f.tags, tag)
			return f.sink, nil
		},
		187)
	f.service.now = func() time.Time { return time.Date(2024, 11, 26, 10, 0, 0, 0, time.UTC) }

	return f
}

func TestRunService_Execute(t *testing.T) {
	routes := []dto.Route{
		{DepartureCity: "Paris", ArrivalCity: "Rome"},
		{DepartureCity: "Berlin", ArrivalCity: "Madrid"},
	}

	t.Run("defaults", func(t *testing.T) {
		f := newRunFixture(t, routes)
		f.provider.On("Search", mock.Anything, mock.MatchedBy(func(c dto.SearchCriteria) bool {
			return c.DepartureDate == "2025-06-01"
		})).Return(flightprovider.Empty(), nil).Twice()

		summary, err := f.service.Execute(context.Background(), dto.CrawlRequest{})
		require.NoError(t, err)

		assert.Equal(t, "2025-06-01", summary.CrawlingDate)
		assert.Equal(t, 0, summary.From)
		assert.Equal(t, 2, summary.To)
		assert.Equal(t, 2, summary.NoData)
		assert.Equal(t, []string{""}, f.tags)
		assert.True(t, f.sink.closed)
	})

	t.Run("range_and_tag", func(t *testing.T) {
		f := newRunFixture(t, routes)
		f.provider.On("Search", mock.Anything, dto.NewSearchCriteria("BER", "MAD", "2025-01-15")).
			Return(flightprovider.Empty(), nil).Once()

		to := 2
		summary, err := f.service.Execute(context.Background(), dto.CrawlRequest{
			CrawlingDate: "2025-01-15",
			From:         1,
			To:           &to,
			Tag:          "batch1",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Routes)
		assert.Equal(t, []string{"batch1"}, f.tags)
	})

	t.Run("range_past_route_list", func(t *testing.T) {
		f := newRunFixture(t, routes)

		to := 5
		_, err := f.service.Execute(context.Background(), dto.CrawlRequest{To: &to})

		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Empty(t, f.tags)
	})

	t.Run("invalid_request", func(t *testing.T) {
		f := newRunFixture(t, routes)

		to := 1
		_, err := f.service.Execute(context.Background(), dto.CrawlRequest{From: 1, To: &to})

		assert.EqualError(t, err, "to must be greater than from")
	})

	t.Run("route_source_failure", func(t *testing.T) {
		f := newRunFixture(t, routes)
		f.service.LoadRoutes = func() ([]dto.Route, error) { return nil, errors.New("file is not a zip file") }

		_, err := f.service.Execute(context.Background(), dto.CrawlRequest{})

		assert.ErrorContains(t, err, "load routes: file is not a zip file")
	})

	t.Run("failed_routes_file", func(t *testing.T) {
		f := newRunFixture(t, routes)
		f.service.LoadRoutes = func() ([]dto.Route, error) {
			t.Fatal("route spreadsheet must not be read")
			return nil, nil
		}
		f.provider.On("Search", mock.Anything, dto.NewSearchCriteria("PARI", "ROME", "2025-06-01")).
			Return(flightprovider.Empty(), nil).Once()

		path := filepath.Join(t.TempDir(), "failed_routes.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
    {
        "departure_city": "Paris",
        "arrival_city": "Rome",
        "origin_city_id": "PARI",
        "arrival_city_id": "ROME",
        "crawling_date": "2025-06-01"
    }
]`), 0o644))

		summary, err := f.service.Execute(context.Background(), dto.CrawlRequest{
			CrawlingDate:     "2025-06-01",
			FailedRoutesFile: path,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.NoData)
	})
}

func TestRunService_Execute_Lock(t *testing.T) {
	routes := []dto.Route{{DepartureCity: "Paris", ArrivalCity: "Rome"}}

	t.Run("lock_acquired_and_released", func(t *testing.T) {
		f := newRunFixture(t, routes)
		f.provider.On("Search", mock.Anything, mock.Anything).Return(flightprovider.Empty(), nil).Once()

		locker := NewMockRunLocker(t)
		locker.On("GetLockKey", "", "2025-06-01").Return("crawl:lock::2025-06-01")
		locker.On("AcquireLock", mock.Anything, "crawl:lock::2025-06-01", 12*time.Hour).Return(true, nil)
		locker.On("ReleaseLock", mock.Anything, "crawl:lock::2025-06-01").Return(nil)

		f.service.Locker = locker
		f.service.LockTimeout = 12 * time.Hour

		_, err := f.service.Execute(context.Background(), dto.CrawlRequest{})
		require.NoError(t, err)
	})

	t.Run("lock_held_elsewhere", func(t *testing.T) {
		f := newRunFixture(t, routes)

		locker := NewMockRunLocker(t)
		locker.On("GetLockKey", "", "2025-06-01").Return("crawl:lock::2025-06-01")
		locker.On("AcquireLock", mock.Anything, "crawl:lock::2025-06-01", time.Duration(0)).Return(false, nil)

		f.service.Locker = locker

		_, err := f.service.Execute(context.Background(), dto.CrawlRequest{})

		assert.ErrorIs(t, err, ErrCrawlLocked)
		assert.Empty(t, f.tags)
	})
}

func TestRunService_Start(t *testing.T) {
	routes := []dto.Route{{DepartureCity: "Paris", ArrivalCity: "Rome"}}
	f := newRunFixture(t, routes)

	release := make(chan struct{})
	f.provider.On("Search", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(flightprovider.Success([]dto.Itinerary{parisRomeItinerary()}), nil).Once()

	run, err := f.service.Start(context.Background(), dto.CrawlRequest{CrawlingDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusRunning, run.Status)
	assert.NotEmpty(t, run.ID)

	_, err = f.service.Start(context.Background(), dto.CrawlRequest{})
	assert.ErrorIs(t, err, ErrCrawlInProgress)

	close(release)
	f.service.Wait()

	got, err := f.service.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusCompleted, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 1, got.Summary.Succeeded)
	assert.NotNil(t, got.FinishedAt)

	_, err = f.service.Get("5b1c5e0e-1111-4b6a-9a55-3d0f4f0a7d10")
	assert.ErrorIs(t, err, ErrCrawlNotFound)

	t.Run("failed_run", func(t *testing.T) {
		f.service.LoadRoutes = func() ([]dto.Route, error) { return nil, errors.New("boom") }

		run, err := f.service.Start(context.Background(), dto.CrawlRequest{})
		require.NoError(t, err)
		f.service.Wait()

		got, err := f.service.Get(run.ID)
		require.NoError(t, err)
		assert.Equal(t, dto.RunStatusFailed, got.Status)
		assert.Equal(t, "load routes: boom", got.Error)
	})
}
