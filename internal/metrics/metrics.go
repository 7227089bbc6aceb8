// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetlens_requests_total",
			Help: "Total number of HTTP requests by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheetlens_model_duration_seconds",
			Help:    "Time spent waiting on the model in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120, 180, 300},
		},
		[]string{"provider", "endpoint"},
	)

	ModelErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetlens_model_errors_total",
			Help: "Failed model calls",
		},
		[]string{"provider", "endpoint"},
	)

	// result is one of ok, empty, error
	PreviewSheets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetlens_preview_sheets_total",
			Help: "Sheets rendered into previews by outcome",
		},
		[]string{"result"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetlens_upload_bytes",
			Help:    "Size of uploaded workbooks in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)
