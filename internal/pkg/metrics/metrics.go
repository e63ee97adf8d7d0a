package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InquiriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inquirygate_inquiries_total",
		Help: "The total number of relayed inquiries",
	}, []string{"method", "status"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inquirygate_upstream_latency_seconds",
		Help:    "Upstream call latency in seconds, retries included",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	UpstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inquirygate_upstream_retries_total",
		Help: "Upstream attempts repeated after a transport failure",
	}, []string{"method"})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inquirygate_audit_write_failures_total",
		Help: "Inquiry log records that could not be persisted",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inquirygate_http_latency_seconds",
		Help:    "Inbound request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
