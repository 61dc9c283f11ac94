// Package metrics counts what the probe reads and displays and optionally
// serves the counters to Prometheus together with pprof.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logprobe"

// Metrics holds the probe counters. A nil *Metrics is valid and counts
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	BytesRead       prometheus.Counter
	ReadCycles      prometheus.Counter
	SocketReads     prometheus.Counter
	RecordsDecoded  *prometheus.CounterVec
	RecordsFiltered *prometheus.CounterVec
	DecodeErrors    prometheus.Counter
	PendingBytes    prometheus.Gauge
}

// New creates the counters and registers them with a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_read_total",
			Help:      "Total number of bytes read from the log server",
		}),
		ReadCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "read_cycles_total",
			Help:      "Total number of drain cycles",
		}),
		SocketReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "socket_reads_total",
			Help:      "Total number of socket reads folded into drain cycles",
		}),
		RecordsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "displayed_total",
			Help:      "Total number of records displayed",
		}, []string{"label"}),
		RecordsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "filtered_total",
			Help:      "Total number of records suppressed by the tag filter",
		}, []string{"label"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "decode_errors_total",
			Help:      "Total number of records with an unparsable tag",
		}),
		PendingBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "pending_bytes",
			Help:      "Bytes of an unterminated record carried over to the next cycle",
		}),
	}

	m.registry.MustRegister(
		m.BytesRead,
		m.ReadCycles,
		m.SocketReads,
		m.RecordsDecoded,
		m.RecordsFiltered,
		m.DecodeErrors,
		m.PendingBytes,
		prometheus.NewGoCollector(),
	)
	return m
}

// Cycle records a finished drain cycle.
func (m *Metrics) Cycle(bytes, reads, pending int) {
	if m == nil {
		return
	}
	m.ReadCycles.Inc()
	m.BytesRead.Add(float64(bytes))
	m.SocketReads.Add(float64(reads))
	m.PendingBytes.Set(float64(pending))
}

// Displayed records a displayed record.
func (m *Metrics) Displayed(label string) {
	if m == nil {
		return
	}
	m.RecordsDecoded.WithLabelValues(label).Inc()
}

// Filtered records a record suppressed by the tag filter.
func (m *Metrics) Filtered(label string) {
	if m == nil {
		return
	}
	m.RecordsFiltered.WithLabelValues(label).Inc()
}

// DecodeError records a record with an unparsable tag.
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.DecodeErrors.Inc()
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
