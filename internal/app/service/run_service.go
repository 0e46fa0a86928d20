package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/logger"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/storage"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/utils"
)

type RunLocker interface {
	GetLockKey(tag, crawlingDate string) string
	AcquireLock(ctx context.Context, key string, timeout time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// ArtifactSink is an OutcomeSink backed by files that must be closed at the
// end of the run.
type ArtifactSink interface {
	OutcomeSink
	Close() error
}

type RunService struct {
	Crawler *CrawlerService
	// LoadRoutes returns the configured route list.
	LoadRoutes func() ([]dto.Route, error)
	// OpenSink prepares the artifacts of a run tagged tag.
	OpenSink    func(tag string) (ArtifactSink, error)
	Locker      RunLocker
	LockTimeout time.Duration
	DaysAhead   int
	// BaseContext is the parent of runs started with Start. Cancel it to stop
	// a background run.
	BaseContext context.Context

	now func() time.Time

	mu     sync.Mutex
	runs   map[string]*dto.CrawlRun
	active string
	wg     sync.WaitGroup
}

func NewRunService(crawler *CrawlerService,
	loadRoutes func() ([]dto.Route, error),
	openSink func(tag string) (ArtifactSink, error),
	daysAhead int) *RunService {
	return &RunService{
		Crawler:    crawler,
		LoadRoutes: loadRoutes,
		OpenSink:   openSink,
		DaysAhead:  daysAhead,
		now:        time.Now,
		runs:       make(map[string]*dto.CrawlRun),
	}
}

// Execute runs one crawl to completion. An empty crawling date means
// DaysAhead days from today, a nil To means the end of the route list. With
// FailedRoutesFile set, the routes are read from a previous failed routes
// artifact instead of the route spreadsheet.
func (s *RunService) Execute(ctx context.Context, req dto.CrawlRequest) (dto.CrawlSummary, error) {
	if err := req.Validate(); err != nil {
		return dto.CrawlSummary{}, err
	}

	crawlingDate := req.CrawlingDate
	if crawlingDate == "" {
		crawlingDate = utils.CrawlDate(s.clock(), s.DaysAhead)
	}

	routes, err := s.loadRoutes(req)
	if err != nil {
		return dto.CrawlSummary{}, err
	}

	to := len(routes)
	if req.To != nil {
		to = *req.To
	}

	if req.From > len(routes) || to > len(routes) {
		return dto.CrawlSummary{}, fmt.Errorf("%w: [%d, %d) of %d routes",
			ErrInvalidRange, req.From, to, len(routes))
	}

	if s.Locker != nil {
		lockKey := s.Locker.GetLockKey(req.Tag, crawlingDate)

		acquired, err := s.Locker.AcquireLock(ctx, lockKey, s.LockTimeout)
		if err != nil {
			return dto.CrawlSummary{}, fmt.Errorf("failed to acquire lock: %w", err)
		}

		if !acquired {
			return dto.CrawlSummary{}, fmt.Errorf("%w: %s", ErrCrawlLocked, lockKey)
		}

		defer func() {
			if err := s.Locker.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
				slog.WarnContext(ctx, "failed to release lock", slog.String("error", err.Error()))
			}
		}()
	}

	sink, err := s.OpenSink(req.Tag)
	if err != nil {
		return dto.CrawlSummary{}, fmt.Errorf("open artifacts: %w", err)
	}

	slog.InfoContext(ctx, "crawl started",
		slog.String("crawling_date", crawlingDate),
		slog.Int("from", req.From),
		slog.Int("to", to),
		slog.String("tag", req.Tag))

	summary, err := s.Crawler.Crawl(ctx, CrawlJob{
		Routes:       routes,
		From:         req.From,
		To:           to,
		CrawlingDate: crawlingDate,
		Sink:         sink,
	})

	if closeErr := sink.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close artifacts: %w", closeErr))
	}

	if err != nil {
		return summary, err
	}

	slog.InfoContext(ctx, "crawl finished",
		slog.Int("routes", summary.Routes),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("no_data", summary.NoData),
		slog.Int("failed", summary.Failed),
		slog.Int("api_calls", summary.APICalls),
		slog.Duration("elapsed", summary.Elapsed()))

	return summary, nil
}

func (s *RunService) loadRoutes(req dto.CrawlRequest) ([]dto.Route, error) {
	if req.FailedRoutesFile != "" {
		records, err := storage.ReadRouteRecords(req.FailedRoutesFile)
		if err != nil {
			return nil, err
		}

		return storage.RoutesFromRecords(records), nil
	}

	routes, err := s.LoadRoutes()
	if err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}

	return routes, nil
}

// Start runs a crawl in the background and returns it in the running state.
// Only one run is active per process.
func (s *RunService) Start(ctx context.Context, req dto.CrawlRequest) (dto.CrawlRun, error) {
	if err := req.Validate(); err != nil {
		return dto.CrawlRun{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		return dto.CrawlRun{}, ErrCrawlInProgress
	}

	if s.runs == nil {
		s.runs = make(map[string]*dto.CrawlRun)
	}

	run := &dto.CrawlRun{
		ID:        uuid.NewString(),
		Status:    dto.RunStatusRunning,
		Request:   req,
		StartedAt: s.clock(),
	}
	s.runs[run.ID] = run
	s.active = run.ID

	parent := s.BaseContext
	if parent == nil {
		parent = context.Background()
	}

	// keep the request scoped values such as the request id, not its deadline
	runCtx := logger.WithRunID(parent, run.ID)
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		runCtx = context.WithValue(runCtx, logger.RequestIDKey, requestID)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		summary, err := s.Execute(runCtx, req)
		s.finish(run.ID, summary, err)
	}()

	return *run, nil
}

func (s *RunService) finish(id string, summary dto.CrawlSummary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.runs[id]
	finishedAt := s.clock()
	run.FinishedAt = &finishedAt
	run.Summary = &summary
	run.Status = dto.RunStatusCompleted

	if err != nil {
		run.Status = dto.RunStatusFailed
		run.Error = err.Error()
	}

	s.active = ""
}

// Get returns a snapshot of a run started with Start.
func (s *RunService) Get(id string) (dto.CrawlRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return dto.CrawlRun{}, ErrCrawlNotFound
	}

	snapshot := *run
	if run.Summary != nil {
		summary := *run.Summary
		snapshot.Summary = &summary
	}

	return snapshot, nil
}

// Wait blocks until every run started with Start has finished.
func (s *RunService) Wait() {
	s.wg.Wait()
}

func (s *RunService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}

	return s.now()
}
