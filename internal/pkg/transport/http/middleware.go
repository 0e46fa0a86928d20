package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

type MiddlewareFunc func(http.Handler) http.Handler

var errPanic = exception.ApplicationError{
	Message:    "internal server error",
	StatusCode: http.StatusInternalServerError,
}

// Recoverer turns a handler panic into a logged 500 with the usual error body.
func Recoverer(logger *slog.Logger) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if err, _ := rvr.(error); errors.Is(err, http.ErrAbortHandler) {
						// the client connection is gone, nothing to answer
						panic(rvr)
					}

					logger.ErrorContext(req.Context(), "panic occurred",
						slog.Any("message", rvr),
						slog.String("stack_trace", string(debug.Stack())))
					ErrorResponse(req.Context(), errPanic, respWriter)
				}
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}

// CORSMiddleware allows browsers to start and poll crawls.
func CORSMiddleware() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
}

// RequestID add request id to context and response header. Runs started by
// the request keep logging it next to their run id.
func RequestID() MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)
			w.Header().Set(requestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
