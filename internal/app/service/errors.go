package service

import (
	"net/http"

	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

var ErrCrawlInProgress = exception.ApplicationError{
	Message:    "a crawl is already running",
	StatusCode: http.StatusConflict,
}

var ErrCrawlNotFound = exception.ApplicationError{
	Message:    "crawl not found",
	StatusCode: http.StatusNotFound,
}

// ErrCrawlLocked is returned when another process holds the run lock of the
// same tag and crawl date.
var ErrCrawlLocked = exception.ApplicationError{
	Message:    "crawl locked by another process",
	StatusCode: http.StatusConflict,
}

var ErrInvalidRange = exception.ApplicationError{
	Message:    "invalid route range",
	StatusCode: http.StatusBadRequest,
}
