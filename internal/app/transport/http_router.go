package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/config"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/endpoints"
	httptransport "github.com/ijalalfrz/flight-price-crawler/internal/pkg/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MakeHTTPRouter builds the HTTP router with all the service endpoints.
func MakeHTTPRouter(
	cfg *config.Config,
	endpts endpoints.Endpoints,
	gatherer prometheus.Gatherer,
) *chi.Mux {
	// Initialize Router
	router := chi.NewRouter()

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1/crawls", func(router chi.Router) {
		router.Use(
			httptransport.RequestID(),
			httptransport.CORSMiddleware(),
			httptransport.Recoverer(slog.Default()),
			render.SetContentType(render.ContentTypeJSON),
		)

		if cfg.HTTP.Timeout > 0 {
			router.Use(middleware.Timeout(cfg.HTTP.Timeout))
		}

		router.Post("/", httptransport.MakeHandlerFunc(
			endpts.CrawlEndpoint.StartCrawl,
			httptransport.DecodeRequest[dto.CrawlRequest],
			httptransport.AcceptedResponse,
		))

		router.Get("/{id}", httptransport.MakeHandlerFunc(
			endpts.CrawlEndpoint.GetCrawl,
			httptransport.DecodeGetCrawlRequest,
			httptransport.ResponseWithBody,
		))
	})

	return router
}
