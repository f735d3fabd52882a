package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "siteplanner_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	layoutRecomputes *prometheus.CounterVec
	layoutDevices    prometheus.Histogram
	layoutRows       prometheus.Histogram

	reportExports *prometheus.CounterVec
)

// Init registers the planner metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)
		layoutRecomputes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "layout_recomputes_total",
				Help: "Layout recomputations by trigger and result",
			},
			[]string{"trigger", "result"},
		)
		layoutDevices = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "layout_devices",
				Help:    "Devices per computed layout",
				Buckets: []float64{0, 2, 5, 10, 20, 40, 80},
			},
		)
		layoutRows = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "layout_rows",
				Help:    "Rows per computed layout",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
			},
		)
		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Site report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(httpRequests, httpLatency, layoutRecomputes, layoutDevices, layoutRows, reportExports)
	})
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func ObserveLayout(trigger string, devices, rows int, err error) {
	if layoutRecomputes == nil {
		return
	}
	layoutRecomputes.WithLabelValues(trigger, result(err)).Inc()
	if err == nil {
		layoutDevices.Observe(float64(devices))
		layoutRows.Observe(float64(rows))
	}
}

func ObserveReport(format string, err error) {
	if reportExports == nil {
		return
	}
	reportExports.WithLabelValues(format, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
