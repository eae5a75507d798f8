package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tombowditch/geojsonio/geojsonio"
)

// Metrics records builder outcomes. It implements geojsonio.Observer.
type Metrics struct {
	// ReferencesTotal counts built references by kind
	ReferencesTotal *prometheus.CounterVec
	// ErrorsTotal counts failed builds by error code
	ErrorsTotal *prometheus.CounterVec
	// GistCreateDuration tracks how long the remote store takes to create a gist
	GistCreateDuration prometheus.Histogram
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReferencesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geojsonio_references_total",
				Help: "Viewer references built, by kind",
			},
			[]string{"kind"},
		),
		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geojsonio_reference_errors_total",
				Help: "Viewer references that could not be built, by error code",
			},
			[]string{"code"},
		),
		GistCreateDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geojsonio_gist_create_duration_seconds",
				Help:    "Time taken to create a gist",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) ReferenceBuilt(kind geojsonio.Kind) {
	m.ReferencesTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ReferenceFailed(code geojsonio.ErrorCode) {
	m.ErrorsTotal.WithLabelValues(code.String()).Inc()
}

func (m *Metrics) StoreCreated(elapsed time.Duration) {
	m.GistCreateDuration.Observe(elapsed.Seconds())
}
