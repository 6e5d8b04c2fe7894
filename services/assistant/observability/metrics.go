// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the assistant.
//
// # Description
//
// Metrics cover the chat pipeline end to end:
//   - Request counters (by endpoint, status)
//   - Classification outcomes (label, whether the fail-open default fired)
//   - Retrieval result counts per corpus
//   - Answer confidence distribution
//   - Pipeline duration histograms
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "kodiak"

// Subsystem for chat pipeline metrics
const chatSubsystem = "chat"

// ChatMetrics holds all Prometheus metrics for the chat pipeline.
//
// # Thread Safety
//
// All operations are thread-safe.
type ChatMetrics struct {
	// RequestsTotal counts chat requests by endpoint and status.
	// Labels: endpoint (chat, documents, meetings), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// ClassificationsTotal counts classifier outcomes.
	// Labels: label (SEARCH, CHAT), defaulted (true, false)
	ClassificationsTotal *prometheus.CounterVec

	// RetrievedRecords observes consolidated record counts per corpus.
	// Labels: corpus (document, meeting)
	RetrievedRecords *prometheus.HistogramVec

	// ConfidenceTotal counts answers by confidence label.
	// Labels: confidence (high, medium, low)
	ConfidenceTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures chat pipeline duration.
	// Labels: path (chat, search), status (success, error)
	PipelineDurationSeconds *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance of ChatMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *ChatMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once at
// application startup. Panics if called twice (duplicate registration).
func InitMetrics() *ChatMetrics {
	DefaultMetrics = &ChatMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "requests_total",
				Help:      "Total requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		ClassificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "classifications_total",
				Help:      "Query classifications by label and whether the fail-open default fired",
			},
			[]string{"label", "defaulted"},
		),

		RetrievedRecords: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "retrieved_records",
				Help:      "Consolidated record counts per corpus after aggregation",
				Buckets:   []float64{0, 1, 2, 5, 10},
			},
			[]string{"corpus"},
		),

		ConfidenceTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "confidence_total",
				Help:      "Answers by confidence label",
			},
			[]string{"confidence"},
		),

		PipelineDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "pipeline_duration_seconds",
				Help:      "Chat pipeline duration by path and status",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"path", "status"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed request.
func (m *ChatMetrics) RecordRequest(endpoint string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordClassification records a classifier outcome.
func (m *ChatMetrics) RecordClassification(label string, defaulted bool) {
	d := "false"
	if defaulted {
		d = "true"
	}
	m.ClassificationsTotal.WithLabelValues(label, d).Inc()
}

// RecordRetrieval records the consolidated record counts for one request.
func (m *ChatMetrics) RecordRetrieval(documents, meetings int) {
	m.RetrievedRecords.WithLabelValues("document").Observe(float64(documents))
	m.RetrievedRecords.WithLabelValues("meeting").Observe(float64(meetings))
}

// RecordConfidence records an answer's confidence label.
func (m *ChatMetrics) RecordConfidence(confidence string) {
	m.ConfidenceTotal.WithLabelValues(confidence).Inc()
}

// RecordPipelineDuration records a pipeline run's duration.
func (m *ChatMetrics) RecordPipelineDuration(path string, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.PipelineDurationSeconds.WithLabelValues(path, status).Observe(seconds)
}
