package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Created = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "urlregistry_created_total",
		Help: "Short URLs created.",
	})
	CreateRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlregistry_create_rejected_total",
		Help: "Create requests rejected, by reason.",
	}, []string{"reason"})
	Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlregistry_resolutions_total",
		Help: "Resolution attempts, by outcome.",
	}, []string{"outcome"})
	ClicksRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "urlregistry_clicks_recorded_total",
		Help: "Click events appended to records.",
	})
	ClicksDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "urlregistry_clicks_dropped_total",
		Help: "Clicks dropped due to a full worker queue.",
	})
	PersistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "urlregistry_persistence_failures_total",
		Help: "Failed persistence operations, by operation.",
	}, []string{"op"})
	ExpiredRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "urlregistry_expired_records",
		Help: "Records whose validity window has passed, as of the last refresh.",
	})
)

func init() {
	prometheus.MustRegister(Created, CreateRejected, Resolutions, ClicksRecorded, ClicksDropped, PersistenceFailures, ExpiredRecords)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
