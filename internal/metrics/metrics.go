// Package metrics holds Prometheus instruments that are used across the
// configuration core and the demo web process.  All collectors are
// registered with the global registry, so importing this package in
// main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigSourceLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_source_load_total",
			Help: "Cumulative number of configuration sources staged and merged.",
		})

	ConfigSourceSkipTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_source_skip_total",
			Help: "Cumulative number of optional sources skipped because they were absent.",
		})

	ConfigSourceErrorTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_source_error_total",
			Help: "Cumulative number of sources that aborted resolution.",
		})

	ConfigKeysResolved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "config_keys_resolved",
			Help: "Number of leaf keys in the resolved configuration space.",
		})

	ConfigBindErrorTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_bind_error_total",
			Help: "Cumulative number of typed bind calls that failed on conversion.",
		})
)

func init() {
	prometheus.MustRegister(
		ConfigSourceLoadTotal,
		ConfigSourceSkipTotal,
		ConfigSourceErrorTotal,
		ConfigKeysResolved,
		ConfigBindErrorTotal,
	)
}
