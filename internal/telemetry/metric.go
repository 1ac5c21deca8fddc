package telemetry

import (
	"imagegate/config"
	"imagegate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct
type Metric struct {
	HttpRequestsTotal     *prometheus.CounterVec
	HttpRequestDuration   *prometheus.HistogramVec
	RequestSuccessTotal   *prometheus.CounterVec
	RequestFailTotal      *prometheus.CounterVec
	RateLimitedTotal      prometheus.Counter
	QuotaDeniedTotal      *prometheus.CounterVec
	ModerationRejectTotal *prometheus.CounterVec
	ProviderCallsTotal    *prometheus.CounterVec
	ProviderCostTotal     *prometheus.CounterVec
	CostSnapshot          *prometheus.GaugeVec
	config                *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	prefix := config.App.Name + "_"
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricHttpRequestDuration),
				Help:    "Request handling duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		RequestSuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRequestSuccessTotal),
				Help: "Successful consuming operations",
			},
			labelNames(core.MetricLabelOperation),
		),
		RequestFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRequestFailTotal),
				Help: "Failed consuming operations",
			},
			labelNames(core.MetricLabelOperation, core.MetricLabelReason),
		),
		RateLimitedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRateLimitTotal),
				Help: "Provider calls rejected by the global sliding window",
			},
		),
		QuotaDeniedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricQuotaDeniedTotal),
				Help: "Credential validations denied",
			},
			labelNames(core.MetricLabelReason),
		),
		ModerationRejectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricModerationRejectTotal),
				Help: "Content screens that blocked the operation",
			},
			labelNames(core.MetricLabelKind, core.MetricLabelReason),
		),
		ProviderCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricProviderCallsTotal),
				Help: "Completed AI provider calls",
			},
			labelNames(core.MetricLabelModel, core.MetricLabelOperation),
		),
		ProviderCostTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricProviderCostTotal),
				Help: "Derived provider cost in USD",
			},
			labelNames(core.MetricLabelModel, core.MetricLabelOperation),
		),
		CostSnapshot: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricCostSnapshot),
				Help: "Accumulated provider cost per model at the last snapshot",
			},
			labelNames(core.MetricLabelModel),
		),
	}
}

// 以下輔助方法在指標未啟用時皆為 no-op

func (m *Metric) IncRateLimited() {
	if m == nil || m.RateLimitedTotal == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

func (m *Metric) IncQuotaDenied(reason string) {
	if m == nil || m.QuotaDeniedTotal == nil {
		return
	}
	m.QuotaDeniedTotal.WithLabelValues(reason).Inc()
}

func (m *Metric) IncModerationReject(kind, reason string) {
	if m == nil || m.ModerationRejectTotal == nil {
		return
	}
	m.ModerationRejectTotal.WithLabelValues(kind, reason).Inc()
}

func (m *Metric) AddProviderCost(model, operation string, cost float64) {
	if m == nil || m.ProviderCostTotal == nil {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(model, operation).Inc()
	m.ProviderCostTotal.WithLabelValues(model, operation).Add(cost)
}

func (m *Metric) ObserveOperation(operation string, err error, reason string) {
	if m == nil || m.RequestSuccessTotal == nil {
		return
	}
	if err == nil {
		m.RequestSuccessTotal.WithLabelValues(operation).Inc()
		return
	}
	m.RequestFailTotal.WithLabelValues(operation, reason).Inc()
}

func (m *Metric) SetCostSnapshot(model string, cost float64) {
	if m == nil || m.CostSnapshot == nil {
		return
	}
	m.CostSnapshot.WithLabelValues(model).Set(cost)
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
