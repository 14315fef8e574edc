package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

type AuditMetrics struct {
	registry *prometheus.Registry

	auditTotal    *prometheus.CounterVec
	auditDuration *prometheus.HistogramVec
	auditInFlight prometheus.Gauge

	decisionsTotal *prometheus.CounterVec
	rowStageTotal  *prometheus.CounterVec
	rulesTotal     *prometheus.CounterVec
	gatedReadings  *prometheus.CounterVec
	gateFailures   *prometheus.CounterVec
	pagesPerRun    *prometheus.HistogramVec
}

func NewAuditMetrics(service string) *AuditMetrics {
	registry := prometheus.NewRegistry()

	auditTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "runs_total",
			Help:      "Total binder audits by status.",
		},
		[]string{"service", "status"},
	)
	auditDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "run_duration_seconds",
			Help:      "Binder audit duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	auditInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "runs_in_flight",
			Help:      "Number of binder audits currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "decisions_total",
			Help:      "Total deduplicated decisions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	rowStageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "row_stage_total",
			Help:      "Row-band resolutions by cascade stage.",
		},
		[]string{"service", "stage"},
	)
	rulesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "rules_total",
			Help:      "Effective hold rules by confidence.",
		},
		[]string{"service", "confidence"},
	)
	gatedReadings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "gated_readings_total",
			Help:      "Vital readings outside physiologic bounds.",
		},
		[]string{"service"},
	)
	gateFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "gate_failures_total",
			Help:      "Audit runs rejected by the acceptance gate.",
		},
		[]string{"service"},
	)
	pagesPerRun := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mar",
			Subsystem: "audit",
			Name:      "pages_per_run",
			Help:      "Distribution of binder page counts per run.",
			Buckets:   []float64{1, 5, 10, 20, 40, 60, 100, 150},
		},
		[]string{"service"},
	)

	registry.MustRegister(auditTotal, auditDuration, auditInFlight, decisionsTotal, rowStageTotal, rulesTotal, gatedReadings, gateFailures, pagesPerRun)

	return &AuditMetrics{
		registry:       registry,
		auditTotal:     auditTotal,
		auditDuration:  auditDuration,
		auditInFlight:  auditInFlight,
		decisionsTotal: decisionsTotal,
		rowStageTotal:  rowStageTotal,
		rulesTotal:     rulesTotal,
		gatedReadings:  gatedReadings,
		gateFailures:   gateFailures,
		pagesPerRun:    pagesPerRun,
	}
}

func (m *AuditMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *AuditMetrics) StartAudit() {
	m.auditInFlight.Inc()
}

func (m *AuditMetrics) FinishAudit(service string, duration time.Duration, err error) {
	m.auditInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.auditTotal.WithLabelValues(service, status).Inc()
	m.auditDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveResult folds a completed run's counters into the registry.
func (m *AuditMetrics) ObserveResult(service string, result *domain.AuditResult) {
	for _, d := range result.Decisions {
		m.decisionsTotal.WithLabelValues(service, string(d.Outcome)).Inc()
	}
	m.rowStageTotal.WithLabelValues(service, domain.StageHeader.String()).Add(float64(result.Diag.Stages.Header))
	m.rowStageTotal.WithLabelValues(service, domain.StagePage.String()).Add(float64(result.Diag.Stages.Page))
	m.rowStageTotal.WithLabelValues(service, domain.StageBorrow.String()).Add(float64(result.Diag.Stages.Borrow))
	m.rowStageTotal.WithLabelValues(service, domain.StageMiss.String()).Add(float64(result.Diag.Stages.Miss))
	m.rulesTotal.WithLabelValues(service, string(domain.ConfidenceParsed)).Add(float64(result.Diag.ParsedRules))
	m.rulesTotal.WithLabelValues(service, string(domain.ConfidenceDefault)).Add(float64(result.Diag.DefaultRules))
	m.gatedReadings.WithLabelValues(service).Add(float64(result.Diag.GatedReadings))
	m.pagesPerRun.WithLabelValues(service).Observe(float64(result.Diag.PagesTotal))
	if !result.GateOK {
		m.gateFailures.WithLabelValues(service).Inc()
	}
}
