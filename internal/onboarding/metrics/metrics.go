package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding module.
// Tracks wizard funnel counts, draft churn and submission step durations.
type Metrics struct {
	SessionsStarted    *prometheus.CounterVec
	SessionsActive     prometheus.Gauge
	StageTransitions   *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	DraftChanges       *prometheus.CounterVec
	AttachmentsEncoded *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	StepDuration       *prometheus.HistogramVec
	SubmitDuration     prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the onboarding metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_sessions_started_total",
			Help: "Total number of onboarding sessions opened, by flow",
		}, []string{"flow"}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "kycportal_onboarding_sessions_active",
			Help: "Number of live onboarding sessions",
		}),
		StageTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_stage_transitions_total",
			Help: "Stage transitions, by branch, stage and outcome",
		}, []string{"branch", "stage", "outcome"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_validation_failures_total",
			Help: "Field validation failures, by field code",
		}, []string{"code"}),
		DraftChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_draft_changes_total",
			Help: "Draft store transitions, by kind",
		}, []string{"kind"}),
		AttachmentsEncoded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_attachments_encoded_total",
			Help: "Attachment encodings, by outcome",
		}, []string{"outcome"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycportal_onboarding_submissions_total",
			Help: "Submission attempts, by branch and outcome (success, failed, partial)",
		}, []string{"branch", "outcome"}),
		StepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycportal_onboarding_submission_step_duration_seconds",
			Help:    "Duration of each submission step",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"step"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kycportal_onboarding_submission_duration_seconds",
			Help:    "Duration of whole submissions",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncSessionStarted(flow string) {
	m.SessionsStarted.WithLabelValues(flow).Inc()
}

func (m *Metrics) SetSessionsActive(n int) {
	m.SessionsActive.Set(float64(n))
}

// IncStageTransition records an advance attempt. Outcome is "passed" or "rejected".
func (m *Metrics) IncStageTransition(branch, stage, outcome string) {
	m.StageTransitions.WithLabelValues(branch, stage, outcome).Inc()
}

func (m *Metrics) IncValidationFailure(code string) {
	m.ValidationFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) IncDraftChange(kind string) {
	m.DraftChanges.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncAttachmentEncoded(outcome string) {
	m.AttachmentsEncoded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSubmission(branch, outcome string) {
	m.Submissions.WithLabelValues(branch, outcome).Inc()
}

// ObserveStep records the duration of one submission step.
// Call with time.Now() at the start of the step.
func (m *Metrics) ObserveStep(step string, start time.Time) {
	m.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
}

// ObserveSubmit records the duration of a whole submission.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
