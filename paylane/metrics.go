package paylane

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const otherMethod = "OTHER"

const (
	outcomeSuccess         = "success"
	outcomeDeclined        = "declined"
	outcomeHTTPError       = "http_error"
	outcomeConnectionError = "connection_error"
	outcomeInvalidRequest  = "invalid_request"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paylane_client",
			Name:      "calls_total",
			Help:      "API calls by operation, method and outcome.",
		},
		[]string{"operation", "method", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paylane_client",
			Name:      "call_duration_seconds",
			Help:      "Round-trip time of API calls, including body decoding.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "method"},
	)
)

func outcomeOf(rec CallRecord) string {
	if rec.Err != nil {
		if _, ok := IsServerConnectionError(rec.Err); ok {
			return outcomeConnectionError
		}
		if _, ok := IsHTTPCallError(rec.Err); ok {
			return outcomeHTTPError
		}
		return outcomeInvalidRequest
	}
	if rec.Success {
		return outcomeSuccess
	}
	return outcomeDeclined
}

// metricMethod keeps the method label bounded; raw calls may carry any verb.
func metricMethod(method string) string {
	if _, ok := allowedMethods[method]; ok {
		return method
	}
	return otherMethod
}

func recordMetrics(rec CallRecord) {
	op := rec.Operation
	if op == "" {
		op = "raw"
	}
	method := metricMethod(rec.Method)
	callsTotal.WithLabelValues(op, method, outcomeOf(rec)).Inc()
	callDuration.WithLabelValues(op, method).Observe(rec.Duration.Seconds())
}
