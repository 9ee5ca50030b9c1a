// Package metrics содержит метрики Prometheus сервиса.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoring_api"

// Registry - реестр метрик сервиса.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Requests - число обработанных запросов по методу API и коду ответа.
	Requests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Processed API requests by method and response code.",
	}, []string{"method", "code"})

	// RequestDuration - длительность обработки HTTP-запроса.
	RequestDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "HTTP request handling latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// StoreRetries - число повторных попыток обращения к хранилищу.
	StoreRetries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "retries_total",
		Help:      "Store calls retried after a connection error.",
	}, []string{"op"})

	// StoreFailures - число операций, исчерпавших лимит попыток.
	StoreFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "failures_total",
		Help:      "Store calls that exhausted the reconnect budget.",
	}, []string{"op"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
