package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "flight_price_crawler"

// Metrics holds all prometheus metrics of the crawler
type Metrics struct {
	RoutesTotal     *prometheus.CounterVec
	APICallsTotal   *prometheus.CounterVec
	APICallDuration prometheus.Histogram
	OffersTotal     prometheus.Counter
	CacheHitsTotal  prometheus.Counter
}

// NewMetrics registers the crawler metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RoutesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "routes_total",
			Help:      "The total number of crawled routes by outcome",
		}, []string{"outcome"}),
		APICallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_calls_total",
			Help:      "The total number of flight provider calls by outcome",
		}, []string{"outcome"}),
		APICallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Time taken by one flight provider call",
			Buckets:   prometheus.DefBuckets,
		}),
		OffersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "offers_total",
			Help:      "The total number of persisted flight offers",
		}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "The total number of provider calls answered from cache",
		}),
	}
}

func (m *Metrics) ObserveAPICall(outcome string, took time.Duration) {
	m.APICallsTotal.WithLabelValues(outcome).Inc()
	m.APICallDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveRoute(outcome string, offers int) {
	m.RoutesTotal.WithLabelValues(outcome).Inc()
	m.OffersTotal.Add(float64(offers))
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
