package audit

import (
	"context"
	"time"

	id "kycportal/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and publishers.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: an account
	// or a KYC record came into existence, or a submission left one behind.
	// These are written synchronously and a failed write is always reported.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine wizard activity useful for funnel
	// analysis and debugging. Best effort, may be dropped under pressure.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the onboarding service and the submission
// orchestrator. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    id.UserID     `json:"user_id"`
	SessionID string        `json:"session_id,omitempty"`
	Action    string        `json:"action"`
	Branch    string        `json:"branch,omitempty"`
	Stage     string        `json:"stage,omitempty"`
	Step      string        `json:"step,omitempty"`
	AccountID string        `json:"account_id,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	// Device is a parsed User-Agent label, never the raw header.
	Device string `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventOnboardingStarted   AuditEvent = "onboarding_started"
	EventBranchSelected      AuditEvent = "branch_selected"
	EventStagePassed         AuditEvent = "stage_passed"
	EventAttachmentEncoded   AuditEvent = "attachment_encoded"
	EventSubmissionStarted   AuditEvent = "submission_started"
	EventAccountCreated      AuditEvent = "account_created"
	EventKYCCompleted        AuditEvent = "kyc_completed"
	EventSubmissionFailed    AuditEvent = "submission_failed"
	EventSubmissionPartial   AuditEvent = "submission_partial"
	EventOnboardingAbandoned AuditEvent = "onboarding_abandoned"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccountCreated:    CategoryCompliance,
	EventKYCCompleted:      CategoryCompliance,
	EventSubmissionPartial: CategoryCompliance,

	EventOnboardingStarted:   CategoryOperations,
	EventBranchSelected:      CategoryOperations,
	EventStagePassed:         CategoryOperations,
	EventAttachmentEncoded:   CategoryOperations,
	EventSubmissionStarted:   CategoryOperations,
	EventSubmissionFailed:    CategoryOperations,
	EventOnboardingAbandoned: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
