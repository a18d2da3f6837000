package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// AnalysisMetrics counts risk engine and QA engine outcomes.
type AnalysisMetrics struct {
	service string

	assessmentsTotal    *prometheus.CounterVec
	riskScore           *prometheus.HistogramVec
	riskFactorsTotal    *prometheus.CounterVec
	missingClausesTotal *prometheus.CounterVec
	answersTotal        *prometheus.CounterVec
}

func NewAnalysisMetrics(service string, reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		service: service,
		assessmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "assessments_total",
				Help:      "Risk assessments by overall level.",
			},
			[]string{"service", "level"},
		),
		riskScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "overall_score",
				Help:      "Distribution of overall risk scores.",
				Buckets:   []float64{2, 3, 4, 5, 6, 7, 8, 9, 10},
			},
			[]string{"service"},
		),
		riskFactorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "factors_total",
				Help:      "Detected risk factors by category and level.",
			},
			[]string{"service", "category", "level"},
		),
		missingClausesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "missing_clauses_total",
				Help:      "Standard clauses reported missing.",
			},
			[]string{"service", "clause"},
		),
		answersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "qa",
				Name:      "answers_total",
				Help:      "Answered questions by intent and outcome.",
			},
			[]string{"service", "intent", "outcome"},
		),
	}
	reg.MustRegister(m.assessmentsTotal, m.riskScore, m.riskFactorsTotal, m.missingClausesTotal, m.answersTotal)
	return m
}

func (m *AnalysisMetrics) ObserveAssessment(a domain.RiskAssessment) {
	m.assessmentsTotal.WithLabelValues(m.service, string(a.RiskLevel)).Inc()
	m.riskScore.WithLabelValues(m.service).Observe(a.OverallScore)
	for _, f := range a.RiskFactors {
		m.riskFactorsTotal.WithLabelValues(m.service, string(f.Category), string(f.Level)).Inc()
	}
	for _, clause := range a.MissingClauses {
		m.missingClausesTotal.WithLabelValues(m.service, clause).Inc()
	}
}

func (m *AnalysisMetrics) ObserveAnswer(r domain.QAResult) {
	outcome := "not_found"
	if r.Found() {
		outcome = "found"
	}
	m.answersTotal.WithLabelValues(m.service, string(r.Intent), outcome).Inc()
}
