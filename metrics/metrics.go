/*
Package metrics implements collection of the probe and store client
metrics.

The collected metrics include the number of successful and failed probe
operations, their latency, and the connection pool statistics of the
store clients. The metrics are exposed in the Prometheus format, see
NewPrometheus.

Components that collect metrics accept the Metrics interface. When no
implementation is given, Default is used, which drops everything.
*/
package metrics

import (
	"net/http"
	"time"
)

// Metrics is the collector interface used by the probe and the store
// clients. Keys are free form, dot separated names like
// "probe.roundtrip.success".
type Metrics interface {
	MeasureSince(key string, start time.Time)
	IncCounter(key string)
	IncCounterBy(key string, value int64)
	UpdateGauge(key string, value float64)
	RegisterHandler(path string, mux *http.ServeMux)
}

// Options for initializing metrics collection.
type Options struct {
	// Common prefix for the keys of the different collected
	// metrics. Used as the Prometheus namespace, with the trailing
	// dot removed. Defaults to "kvprobe".
	Prefix string

	// If set, Go runtime and process metrics are collected in
	// addition to the probe metrics.
	EnableRuntimeMetrics bool

	// HistogramBuckets defines buckets into which the latency
	// observations are counted. Defaults to prometheus.DefBuckets.
	HistogramBuckets []float64
}

// Default is used by the components when no Metrics was configured.
var Default Metrics = Void{}

// Void drops every metric.
type Void struct{}

func (Void) MeasureSince(string, time.Time) {}
func (Void) IncCounter(string) {}
func (Void) IncCounterBy(string, int64) {}
func (Void) UpdateGauge(string, float64) {}
func (Void) RegisterHandler(string, *http.ServeMux) {}
