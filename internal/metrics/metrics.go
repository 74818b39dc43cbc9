package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated registry served on /metrics
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	RoutesLocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "binroute_routes_locked_total", Help: "Routes locked onto a truck."},
		[]string{"truck"},
	)
	StopsServiced = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "binroute_stops_serviced_total", Help: "Stops reached and emptied by a truck."},
		[]string{"truck"},
	)
	RouteDistance = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "binroute_route_distance_km", Help: "Distance of newly locked routes in km.", Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50}},
	)
	// EligibleBins is the size of the pool seen by the last assignment run
	EligibleBins = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "binroute_eligible_bins", Help: "Bins eligible for collection at the last assignment run."},
	)
	SensorReadings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "binroute_sensor_readings_total", Help: "Sensor readings ingested by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(RoutesLocked)
		Registry.MustRegister(StopsServiced)
		Registry.MustRegister(RouteDistance)
		Registry.MustRegister(EligibleBins)
		Registry.MustRegister(SensorReadings)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	RegisterDefault()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
