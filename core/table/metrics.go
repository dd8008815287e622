package table

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabus_table_fetches_total",
			Help: "Total number of table fetches by endpoint and outcome (ok, error, stale, cancelled)",
		},
		[]string{"endpoint", "method", "outcome"},
	)
	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syllabus_table_fetch_duration_seconds",
			Help:    "Backend latency of table fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
	deleteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabus_table_deletes_total",
			Help: "Total number of row deletes by endpoint and outcome (ok, error)",
		},
		[]string{"endpoint", "outcome"},
	)
)
