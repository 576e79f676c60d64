package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AddressesResolved *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	APIErrors         prometheus.Counter
	RequestSeconds    *prometheus.HistogramVec
	ActiveWorkers     prometheus.Gauge
	PassSeconds       prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		AddressesResolved: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "courier_geocoding_addresses_total",
			Help: "Total number of addresses sent to the geocoding provider, by outcome.",
		}, []string{"status"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "courier_coordinate_cache_lookups_total",
			Help: "Total number of coordinate cache lookups, by result.",
		}, []string{"result"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "courier_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courier_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "courier_geocoding_active_workers",
			Help: "Current number of workers waiting on the geocoding provider.",
		}),
		PassSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "courier_dispatch_pass_duration_seconds",
			Help:    "Duration of a full matching and ranking pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
