package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeStarted   = "started"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeUnknown   = "unconvertible"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RefreshesTotal     *prometheus.CounterVec
	LastRefreshSuccess prometheus.Gauge
	ConversionsTotal   *prometheus.CounterVec
	ExchangesTotal     *prometheus.CounterVec
	OpenForms          prometheus.Gauge
}

// NewMetrics registers every collector with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refreshes_total",
				Help: "Rate refresh signals by outcome",
			},
			[]string{"outcome"},
		),

		LastRefreshSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_last_refresh_success_timestamp_seconds",
				Help: "Unix time of the last successful rate refresh",
			},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Currency conversions by outcome",
			},
			[]string{"outcome"},
		),

		ExchangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchanges_total",
				Help: "Submitted exchanges by outcome",
			},
			[]string{"outcome"},
		),

		OpenForms: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "exchange_forms_open",
				Help: "Number of open exchange forms",
			},
		),
	}
}

func (m *Metrics) RecordRefresh(outcome string) {
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordConversion(outcome string) {
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordExchange(outcome string) {
	m.ExchangesTotal.WithLabelValues(outcome).Inc()
}
