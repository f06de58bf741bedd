package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics
var (
	haiPrintsDesc = prometheus.NewDesc(
		"hai_prints_total",
		`Total number of times "Hai" was printed`,
		nil, nil,
	)
	apiErrorsDesc = prometheus.NewDesc(
		"api_errors_total",
		"Total number of API errors",
		nil, nil,
	)
	logWriteErrorsDesc = prometheus.NewDesc(
		"log_write_errors_total",
		"Total number of failed log writes",
		nil, nil,
	)
)

// stateCollector exposes the State counters as Prometheus counters. Values are
// read at scrape time, so two scrapes without a loop iteration in between
// return the same numbers.
type stateCollector struct {
	state *State
}

func (c stateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- haiPrintsDesc
	ch <- apiErrorsDesc
	ch <- logWriteErrorsDesc
}

func (c stateCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.state.Snapshot()
	ch <- prometheus.MustNewConstMetric(haiPrintsDesc, prometheus.CounterValue, float64(snap.HaiPrints))
	ch <- prometheus.MustNewConstMetric(apiErrorsDesc, prometheus.CounterValue, float64(snap.APIErrors))
	ch <- prometheus.MustNewConstMetric(logWriteErrorsDesc, prometheus.CounterValue, float64(snap.LogWriteErrors))
}

// newMetricsRegistry registers the state collector on a dedicated registry so
// the scrape carries no runtime or process collectors.
func newMetricsRegistry(state *State) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(stateCollector{state: state})
	return reg
}

// newMetricsServer serves the registry on /metrics and, like a bare exporter,
// on every other path of the metrics port.
func newMetricsServer(reg *prometheus.Registry) *http.Server {
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	mux.Handle("/", handler)

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}
