package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for session processing runs.
type PipelineMetrics struct {
	sessionsTotal *prometheus.CounterVec
	stageLatency  *prometheus.HistogramVec
}

// Session outcome labels.
const (
	StatusOK                  = "ok"
	StatusTranscriptionFailed = "transcription_failed"
	StatusPlanFailed          = "plan_failed"
	StatusWriteFailed         = "write_failed"
)

// Pipeline stage labels.
const (
	StageTranscription = "transcription"
	StagePlanGen       = "plan_generation"
	StageOutput        = "output"
)

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evida",
			Subsystem: "pipeline",
			Name:      "sessions_total",
			Help:      "Total processed coaching sessions by outcome",
		}, []string{"provider", "status"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evida",
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Latency of individual pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.stageLatency)
	return m
}

func (m *PipelineMetrics) ObserveSession(provider, status string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(provider, status).Inc()
}

func (m *PipelineMetrics) ObserveStageLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(seconds)
}
