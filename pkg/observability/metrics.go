package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cells/pkg/domain"
)

// Metrics counts records and measures query latency.
type Metrics struct {
	records  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec

	mu      sync.Mutex
	started map[queryKey][]time.Time
}

type queryKey struct {
	node, attribute, action string
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cells_records_total",
				Help: "Total number of records emitted, by node, type and attribute.",
			},
			[]string{"node", "type", "attribute"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cells_query_duration_seconds",
				Help:    "Time between compute:start and compute:end of a query.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node", "attribute"},
		),
		inflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cells_queries_inflight",
				Help: "Queries started and not yet completed.",
			},
			[]string{"node", "attribute"},
		),
		started: make(map[queryKey][]time.Time),
	}
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Collectors returns the record counter, the query latency histogram and
// the in-flight gauge.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.records, m.duration, m.inflight}
}

// Observe accounts for one record. It is a domain.Observer.
func (m *Metrics) Observe(rec domain.Record) {
	m.records.WithLabelValues(rec.NodeID, string(rec.Type), rec.Attribute).Inc()

	key := queryKey{node: rec.NodeID, attribute: rec.Attribute, action: rec.ActionID}
	switch rec.Type {
	case domain.RecordComputeStart:
		m.inflight.WithLabelValues(rec.NodeID, rec.Attribute).Inc()
		m.mu.Lock()
		m.started[key] = append(m.started[key], rec.Timestamp)
		m.mu.Unlock()
	case domain.RecordComputeEnd:
		m.inflight.WithLabelValues(rec.NodeID, rec.Attribute).Dec()
		m.mu.Lock()
		queue := m.started[key]
		var start time.Time
		if len(queue) > 0 {
			start = queue[0]
			if len(queue) == 1 {
				delete(m.started, key)
			} else {
				m.started[key] = queue[1:]
			}
		}
		m.mu.Unlock()
		if !start.IsZero() {
			m.duration.WithLabelValues(rec.NodeID, rec.Attribute).Observe(rec.Timestamp.Sub(start).Seconds())
		}
	}
}
