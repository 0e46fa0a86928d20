package dto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

// RouteOutcome is the terminal state of one route in a run.
type RouteOutcome string

const (
	OutcomeSuccess RouteOutcome = "success"
	OutcomeNoData  RouteOutcome = "no_data"
	OutcomeFailed  RouteOutcome = "failed"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CrawlRequest selects what one run crawls. To is exclusive; nil means up to
// the end of the route list. An empty CrawlingDate means the configured
// number of days ahead of today.
type CrawlRequest struct {
	CrawlingDate     string `json:"crawling_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	From             int    `json:"from" validate:"gte=0"`
	To               *int   `json:"to,omitempty" validate:"omitempty,gte=0"`
	Tag              string `json:"tag,omitempty" validate:"omitempty,max=64,run_tag"`
	FailedRoutesFile string `json:"-"`
}

func (c *CrawlRequest) Bind(r *http.Request) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("error validate request: %w", err)
	}

	return nil
}

func (c *CrawlRequest) Validate() error {
	if err := ValidateSingleError(c); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	if c.To != nil && *c.To <= c.From {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    "to must be greater than from",
		}
	}

	return nil
}

// CrawlSummary counts the outcomes of one run.
type CrawlSummary struct {
	CrawlingDate string    `json:"crawling_date"`
	From         int       `json:"from"`
	To           int       `json:"to"`
	Routes       int       `json:"routes"`
	Succeeded    int       `json:"succeeded"`
	NoData       int       `json:"no_data"`
	Failed       int       `json:"failed"`
	Offers       int       `json:"offers"`
	APICalls     int       `json:"api_calls"`
	CacheHits    int       `json:"cache_hits"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func (s *CrawlSummary) Record(outcome RouteOutcome) {
	s.Routes++

	switch outcome {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeNoData:
		s.NoData++
	case OutcomeFailed:
		s.Failed++
	}
}

func (s CrawlSummary) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// CrawlRun is a crawl started through the HTTP surface.
type CrawlRun struct {
	ID         string        `json:"id"`
	Status     RunStatus     `json:"status"`
	Request    CrawlRequest  `json:"request"`
	Summary    *CrawlSummary `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// GetCrawlRequest is the path parameter of the run status endpoint.
type GetCrawlRequest struct {
	ID string `validate:"required,uuid"`
}
