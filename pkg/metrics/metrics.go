package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfpulse_predictions_served_total",
		Help: "Predictions computed on request, by endpoint.",
	}, []string{"endpoint"})
	PredictionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfpulse_prediction_errors_total",
		Help: "Failed predictions, by error kind.",
	}, []string{"kind"})
	BatchItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfpulse_batch_items_total",
		Help: "Products processed by batch runs, by outcome.",
	}, []string{"outcome"})
	BatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfpulse_batch_runs_total",
		Help: "Batch runs, by policy and status.",
	}, []string{"policy", "status"})
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shelfpulse_batch_duration_seconds",
		Help:    "Duration of a full batch run.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfpulse_http_requests_total",
		Help: "HTTP requests, by route and status code.",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelfpulse_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
