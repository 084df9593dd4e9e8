package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hugomfc/ttmon/internal/domain"
)

// Exporter owns the prometheus registry and the gauges the collector writes
// into. A dedicated registry keeps the process's default registry out of the
// exposition and out of the tests.
type Exporter struct {
	pattern  string
	registry *prometheus.Registry

	total    *prometheus.GaugeVec
	windows  *prometheus.GaugeVec
	tickErrs prometheus.Counter
}

func NewExporter(pattern string) *Exporter {
	e := &Exporter{
		pattern:  pattern,
		registry: prometheus.NewRegistry(),
		total: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rate_limiting_total_requests",
			Help: "Total requests across all selected rate-limit windows.",
		}, []string{"pattern"}),
		windows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rate_limiting_window_requests",
			Help: "Requests in the selected window of one rate-limited entity.",
		}, []string{"identifier", "entity", "window_size"}),
		tickErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limiting_scrape_errors_total",
			Help: "Collection ticks skipped because the counter store was unreachable.",
		}),
	}
	e.registry.MustRegister(e.total, e.windows, e.tickErrs)
	return e
}

// Publish sets the gauges from one tick's snapshot and removes the series of
// identifiers whose grace period has elapsed.
func (e *Exporter) Publish(snapshot domain.Snapshot, expired []domain.Identifier) {
	e.total.WithLabelValues(e.pattern).Set(float64(snapshot.Total))
	for id, count := range snapshot.Counts {
		e.windows.WithLabelValues(string(id), id.Entity(), id.WindowSize()).Set(float64(count))
	}
	for _, id := range expired {
		e.windows.DeleteLabelValues(string(id), id.Entity(), id.WindowSize())
	}
}

func (e *Exporter) TickError() {
	e.tickErrs.Inc()
}

// Handler returns the /metrics handler for this exporter's registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on the given port and blocks.
func (e *Exporter) Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
