// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
type Collector struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       prometheus.Histogram
	detectionsRecorded prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、専用レジストリにメトリクスを登録する。
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdlog_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crowdlog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		detectionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdlog_detections_recorded_total",
			Help: "Total number of detection records successfully inserted.",
		}),
	}

	registry.MustRegister(c.httpRequests, c.httpDuration, c.detectionsRecorded)

	return c
}

// RecordHTTPRequest はHTTPリクエスト1件分のメトリクスを記録する。
// pathにはパスパラメータ展開前のルートパターンを渡すこと（カーディナリティ対策）。
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, statusLabel(status)).Inc()
	c.httpDuration.Observe(duration.Seconds())
}

// RecordDetection は検出記録の挿入成功を記録する。
func (c *Collector) RecordDetection() {
	c.detectionsRecorded.Inc()
}

// Handler は/metricsエンドポイント用のHTTPハンドラーを返す。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// statusLabel はステータスコードをラベル文字列に変換する。
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
