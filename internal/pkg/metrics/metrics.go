package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus 指标集合。
//
// 所有指标通过 InitMetrics 注册到默认 Registry，
// 重复调用是安全的（测试中会多次初始化）。
var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginThrottledTotal   prometheus.Counter
	RateLimitWaitDuration prometheus.Histogram
)

var initOnce sync.Once

// InitMetrics 创建并注册所有指标。
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})

		HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		LoginThrottledTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_login_throttled_total",
			Help: "Login attempts rejected by the rate limiter.",
		})

		RateLimitWaitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_ratelimit_check_duration_seconds",
			Help:    "Time spent evaluating the login rate limit.",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			LoginThrottledTotal,
			RateLimitWaitDuration,
		)
	})
}
