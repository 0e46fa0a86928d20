package providerutils

import (
	"net/http"

	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

var ErrProviderInternalError = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Message:    "provider internal error or temporary unavailable",
}

var ErrProviderRateLimitExceeded = exception.ApplicationError{
	StatusCode: http.StatusTooManyRequests,
	Message:    "provider rate limit exceeded",
}

// ErrMissingDataKey is a response without the top level "data" key. The
// provider answers this way both when it has nothing yet and on errors.
var ErrMissingDataKey = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Message:    `provider response has no "data" key`,
}

var ErrProviderRejected = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Message:    "provider rejected the request",
}

var ErrUnexpectedSchema = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Message:    "unexpected provider response schema",
}

var ErrRecordingNotFound = exception.ApplicationError{
	StatusCode: http.StatusNotFound,
	Message:    "no recorded response for route",
}
