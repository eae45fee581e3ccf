package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportview_loads_total",
		Help: "Total number of widget loads by flow and final state.",
	}, []string{"flow", "state"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reportview_fetch_duration_seconds",
		Help:    "Duration of upstream resource fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportview_fetch_errors_total",
		Help: "Total number of failed upstream resource fetches.",
	}, []string{"resource"})

	StaleResultsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reportview_stale_results_discarded_total",
		Help: "Total number of load results discarded because their cycle was disposed.",
	})

	FieldDecodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportview_field_decode_failures_total",
		Help: "Total number of persisted fields that could not be decoded.",
	}, []string{"field"})

	ChartRestores = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportview_chart_restores_total",
		Help: "Total number of chart restore attempts by outcome.",
	}, []string{"outcome"})

	WidgetsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reportview_widgets_active",
		Help: "Number of widgets with a load in flight.",
	})
)
