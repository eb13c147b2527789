// Package metrics holds the Prometheus collectors of the mapcode service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcode_requests_total",
		Help: "Total API requests by operation and outcome",
	}, []string{"op", "result"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapcode_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 200, 500},
	}, []string{"op"})
	CodesPerEncode = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mapcode_codes_per_encode",
		Help:    "Number of mapcodes returned per encode request",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mapcode_cache_hits_total",
		Help: "Total redis cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mapcode_cache_misses_total",
		Help: "Total redis cache misses",
	})
	GeoIPLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcode_geoip_lookups_total",
		Help: "Total GeoIP lookups by outcome",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(CodesPerEncode)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(GeoIPLookupsTotal)
}

// Handler serves the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }
