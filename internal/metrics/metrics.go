// Package metrics exposes Prometheus counters for both services on
// /metrics, ambient observability carried regardless of the pipeline's own
// functional non-goals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WitnessJobsTotal counts completed derivation jobs by outcome
// ("completed" or "failed").
var WitnessJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "witnessgen_jobs_total",
	Help: "Total number of witness derivation jobs, by outcome.",
}, []string{"outcome"})

// ProverRemoteSubmitsTotal counts successful submissions to the remote
// proving network.
var ProverRemoteSubmitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "proverproxy_remote_submits_total",
	Help: "Total number of witnesses submitted to the remote proving network.",
})

// Handler serves the process's registered metrics in the Prometheus
// exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
