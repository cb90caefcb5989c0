package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atlas"

// 独立注册表，避免重复构建路由时向全局注册表重复注册
var registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	checkouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	orderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Committed order status transitions.",
	}, []string{"from", "to"})

	loyaltyPoints = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loyalty",
		Name:      "points_total",
		Help:      "Loyalty points earned or spent.",
	}, []string{"kind"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpLatency,
		checkouts,
		orderTransitions,
		loyaltyPoints,
	)
}

// Handler 暴露 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveHTTP 记录一次请求；route 使用路由模板避免高基数
func ObserveHTTP(route, method string, status int, latencyMS float64) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route).Observe(latencyMS)
}

// ObserveCheckout 记录下单结果
func ObserveCheckout(outcome string) {
	checkouts.WithLabelValues(outcome).Inc()
}

// ObserveOrderTransition 记录已提交的订单状态流转
func ObserveOrderTransition(from, to string) {
	orderTransitions.WithLabelValues(from, to).Inc()
}

// AddLoyaltyPoints 累计积分变动，kind 为 earn 或 spend
func AddLoyaltyPoints(kind string, points int) {
	if points <= 0 {
		return
	}
	loyaltyPoints.WithLabelValues(kind).Add(float64(points))
}
