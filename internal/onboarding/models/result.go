package models

import (
	"strings"
	"time"

	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
)

// Step is one stage of the submission sequence.
type Step string

const (
	StepEncodeAttachments Step = "encode_attachments"
	StepReconcile         Step = "reconcile"
	StepCreateAccount     Step = "create_account"
	StepCompleteKYC       Step = "complete_kyc"
	StepMarkActive        Step = "mark_active_profile"
	StepRefresh           Step = "refresh_dependents"
)

// SubmissionSteps is the strict execution order.
var SubmissionSteps = []Step{
	StepEncodeAttachments,
	StepReconcile,
	StepCreateAccount,
	StepCompleteKYC,
	StepMarkActive,
	StepRefresh,
}

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type StepOutcome struct {
	Step   Step       `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// SubmissionResult is the outcome of one submission attempt. It is used to
// drive the session state and to decide whether the draft may be discarded.
type SubmissionResult struct {
	SessionID    id.SessionID    `json:"sessionId"`
	SubmissionID id.SubmissionID `json:"submissionId"`
	Steps        []StepOutcome   `json:"steps"`
	FailedStep   Step            `json:"failedStep,omitempty"`
	AccountID    string          `json:"accountId,omitempty"`
	// Partial is set when the account exists but KYC was not completed.
	Partial bool `json:"partial"`
	// Resumed is set when account creation was skipped because an earlier
	// attempt of the same session already created the account.
	Resumed     bool      `json:"resumed"`
	CompletedAt time.Time `json:"completedAt"`
}

// Succeeded reports whether the mandatory steps all passed.
func (r *SubmissionResult) Succeeded() bool {
	return r.FailedStep == ""
}

// Record appends a step outcome.
func (r *SubmissionResult) Record(step Step, status StepStatus, err error) {
	outcome := StepOutcome{Step: step, Status: status}
	if err != nil {
		outcome.Error = err.Error()
	}
	r.Steps = append(r.Steps, outcome)
	if status == StepFailed && r.FailedStep == "" {
		r.FailedStep = step
	}
}

// RecordBestEffort appends the outcome of a step whose failure does not fail
// the submission.
func (r *SubmissionResult) RecordBestEffort(step Step, err error) {
	outcome := StepOutcome{Step: step, Status: StepSucceeded}
	if err != nil {
		outcome.Status = StepFailed
		outcome.Error = err.Error()
	}
	r.Steps = append(r.Steps, outcome)
}

// Outcome returns the recorded outcome of step.
func (r *SubmissionResult) Outcome(step Step) (StepOutcome, bool) {
	for _, o := range r.Steps {
		if o.Step == step {
			return o, true
		}
	}
	return StepOutcome{}, false
}

// SubmissionStatus is the ledger position of a submission.
type SubmissionStatus string

const (
	SubmissionPending        SubmissionStatus = "pending"
	SubmissionAccountCreated SubmissionStatus = "account_created"
	SubmissionKYCCompleted   SubmissionStatus = "kyc_completed"
	SubmissionFailed         SubmissionStatus = "failed"
)

// ParseSubmissionStatus validates a ledger status filter value.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	st := SubmissionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case SubmissionPending, SubmissionAccountCreated, SubmissionKYCCompleted, SubmissionFailed:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported submission status: "+s)
	}
}

// SubmissionRecord is the durable ledger row for one session's submission.
// Retries of the same session update the same row.
type SubmissionRecord struct {
	ID         id.SubmissionID  `json:"id"`
	SessionID  id.SessionID     `json:"sessionId"`
	UserID     id.UserID        `json:"userId"`
	Branch     Branch           `json:"branch"`
	Status     SubmissionStatus `json:"status"`
	AccountID  string           `json:"accountId,omitempty"`
	FailedStep Step             `json:"failedStep,omitempty"`
	LastError  string           `json:"lastError,omitempty"`
	Attempts   int              `json:"attempts"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// IsPartial reports an account that exists without completed KYC.
func (r *SubmissionRecord) IsPartial() bool {
	return r.AccountID != "" && r.Status != SubmissionKYCCompleted
}
