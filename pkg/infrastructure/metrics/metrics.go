// Package metrics defines the Prometheus collectors for consolidation runs.
// A run is a batch job, so collectors live on a private registry that is
// written to a node-exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/lotrecon/pkg/application/dto"
)

// Metrics holds the collectors for one process
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead           *prometheus.CounterVec
	RowsDropped        *prometheus.CounterVec
	RecordsTotal       prometheus.Counter
	TraceabilityTotal  prometheus.Counter
	FlagsTotal         *prometheus.CounterVec
	ExcludedLotsTotal  prometheus.Counter
	RunDuration        prometheus.Histogram
	LastRunTimestamp   prometheus.Gauge
	ReportCacheResults *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lotrecon_source_rows_total",
				Help: "Source rows read, by source.",
			},
			[]string{"source"},
		),
		RowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lotrecon_source_rows_dropped_total",
				Help: "Source rows dropped for a missing lot identifier, by source.",
			},
			[]string{"source"},
		),
		RecordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lotrecon_consolidated_records_total",
				Help: "Consolidated records emitted.",
			},
		),
		TraceabilityTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lotrecon_traceability_records_total",
				Help: "Consolidated records emitted for lots without a production entry.",
			},
		),
		FlagsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lotrecon_flags_total",
				Help: "Flags raised, by issue type.",
			},
			[]string{"issue"},
		),
		ExcludedLotsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lotrecon_excluded_lots_total",
				Help: "Lots excluded for insufficient data.",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lotrecon_run_duration_seconds",
				Help:    "Wall time of a consolidation run, including source loading.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lotrecon_last_run_timestamp_seconds",
				Help: "Unix time the last consolidation run completed.",
			},
		),
		ReportCacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lotrecon_report_cache_total",
				Help: "Report cache lookups, by result (hit, miss).",
			},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.RecordsTotal,
		m.TraceabilityTotal,
		m.FlagsTotal,
		m.ExcludedLotsTotal,
		m.RunDuration,
		m.LastRunTimestamp,
		m.ReportCacheResults,
	)
	return m
}

// ObserveRun records the outcome of one consolidation run
func (m *Metrics) ObserveRun(result *dto.ConsolidationResult, duration time.Duration) {
	stats := result.Stats
	m.RowsRead.WithLabelValues("production").Add(float64(stats.ProductionRows))
	m.RowsRead.WithLabelValues("quality").Add(float64(stats.QualityRows))
	m.RowsRead.WithLabelValues("shipping").Add(float64(stats.ShippingRows))
	m.RowsDropped.WithLabelValues("production").Add(float64(stats.ProductionDropped))
	m.RowsDropped.WithLabelValues("quality").Add(float64(stats.QualityDropped))
	m.RowsDropped.WithLabelValues("shipping").Add(float64(stats.ShippingDropped))

	m.RecordsTotal.Add(float64(len(result.Records)))
	for _, rec := range result.Records {
		if rec.TraceabilityOnly {
			m.TraceabilityTotal.Inc()
		}
	}

	for issue, n := range result.FlagCounts() {
		m.FlagsTotal.WithLabelValues(string(issue)).Add(float64(n))
	}
	for _, f := range result.Flags {
		if f.Excludes() {
			m.ExcludedLotsTotal.Inc()
		}
	}

	m.RunDuration.Observe(duration.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// ObserveCache counts a report cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.ReportCacheResults.WithLabelValues("hit").Inc()
		return
	}
	m.ReportCacheResults.WithLabelValues("miss").Inc()
}

// WriteTextfile writes the registry in text exposition format, atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
