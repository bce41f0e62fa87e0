// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines Prometheus instrumentation for the pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privylens",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "privylens",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privylens",
			Name:      "searches_total",
			Help:      "Total number of search submissions",
		},
		[]string{"provider", "status"},
	)

	CandidatesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privylens",
			Name:      "candidates_dropped_total",
			Help:      "Candidates dropped from ranking because embedding failed",
		},
		[]string{"provider"},
	)
)

var registered bool

// Register registers all pipeline metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(CandidatesDroppedTotal)
	registered = true
}
