package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kycportal/internal/onboarding/catalog"
	"kycportal/internal/onboarding/draftstore"
	"kycportal/internal/onboarding/encoding"
	"kycportal/internal/onboarding/metrics"
	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/store/ledger"
	"kycportal/internal/onboarding/submission"
	"kycportal/internal/onboarding/validation"
	"kycportal/internal/onboarding/wizard"
	"kycportal/pkg/attrs"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
	"kycportal/pkg/platform/audit"
	"kycportal/pkg/platform/middleware/device"
	"kycportal/pkg/platform/sentinel"
	"kycportal/pkg/requestcontext"
)

type SessionStore interface {
	Create(ctx context.Context, sess *wizard.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID, now time.Time) (*wizard.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
	Count() int
}

type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (*submission.Outcome, error)
}

type SubmissionLedger interface {
	List(ctx context.Context, f ledger.Filter) ([]*models.SubmissionRecord, error)
}

type AttachmentEncoder interface {
	Encode(ctx context.Context, slot models.Slot, f models.File) (encoding.Result, error)
	Forget(fileID string)
	MaxBytes() int64
}

// AuditPublisher receives routine wizard activity. Compliance events are
// emitted by the submission orchestrator.
type AuditPublisher interface {
	Track(ctx context.Context, event audit.Event)
}

// Service exposes the onboarding wizard use cases over live sessions.
type Service struct {
	sessions       SessionStore
	selector       *catalog.Selector
	encoder        AttachmentEncoder
	submitter      Submitter
	ledger         SubmissionLedger
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(sessions SessionStore, selector *catalog.Selector, encoder AttachmentEncoder, submitter Submitter, ledger SubmissionLedger, opts ...Option) *Service {
	s := &Service{
		sessions:  sessions,
		selector:  selector,
		encoder:   encoder,
		submitter: submitter,
		ledger:    ledger,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session for flow.
func (s *Service) Start(ctx context.Context, userID id.UserID, flow string) (*wizard.View, error) {
	f, err := models.ParseFlow(flow)
	if err != nil {
		return nil, err
	}
	sess := wizard.New(id.NewSessionID(), userID, f, s.selector, s.now())
	sess.Watch(s.observeDraft)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open onboarding session")
	}

	s.logAudit(ctx, audit.EventOnboardingStarted, sess,
		"user_id", userID,
		"flow", f,
	)
	if s.metrics != nil {
		s.metrics.IncSessionStarted(f.String())
		s.metrics.SetSessionsActive(s.sessions.Count())
	}
	return view(sess), nil
}

// Get returns the caller's session.
func (s *Service) Get(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return view(sess), nil
}

// Branches lists the branches offered to the session's flow.
func (s *Service) Branches(ctx context.Context, userID id.UserID, sessionID id.SessionID) ([]models.Branch, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Offer(), nil
}

func (s *Service) SelectBranch(ctx context.Context, userID id.UserID, sessionID id.SessionID, branch string) (*wizard.View, error) {
	b, err := models.ParseBranch(branch)
	if err != nil {
		return nil, err
	}
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectBranch(b); err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventBranchSelected, sess,
		"user_id", userID,
		"branch", b,
	)
	return view(sess), nil
}

func (s *Service) Patch(ctx context.Context, userID id.UserID, sessionID id.SessionID, patch models.Patch) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Patch(patch); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// Attach encodes f and places it in slot. On an encoding failure the slot
// keeps whatever it held before and the *encoding.EncodingError is returned.
func (s *Service) Attach(ctx context.Context, userID id.UserID, sessionID id.SessionID, slot models.Slot, f models.File) (*wizard.View, error) {
	if !slot.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown attachment slot %q", slot))
	}
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.State().IsEditable() {
		return nil, dErrors.New(dErrors.CodeConflict, "attachments can only change while editing")
	}

	res, err := s.encoder.Encode(ctx, slot, f)
	if err != nil {
		s.incAttachment("failed")
		return nil, err
	}
	if _, err := sess.AttachEncoded(slot, f, res); err != nil {
		return nil, err
	}

	s.incAttachment("encoded")
	s.logAudit(ctx, audit.EventAttachmentEncoded, sess,
		"user_id", userID,
		"slot", slot,
	)
	return view(sess), nil
}

// Detach empties slot.
func (s *Service) Detach(ctx context.Context, userID id.UserID, sessionID id.SessionID, slot models.Slot) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	previous := sess.Draft().Attachments[slot]
	if _, err := sess.RemoveFile(slot); err != nil {
		return nil, err
	}
	if previous.File != nil {
		s.encoder.Forget(previous.File.ID())
	}
	return view(sess), nil
}

// Advance validates the current stage and moves on. Field errors come back as
// validation.FieldErrors.
func (s *Service) Advance(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	stage, err := sess.Advance()
	branch := sess.Draft().Branch.String()
	if fe, ok := validation.AsFieldErrors(err); ok {
		if s.metrics != nil {
			s.metrics.IncStageTransition(branch, stage.Name, "rejected")
			for _, e := range fe {
				s.metrics.IncValidationFailure(string(e.Code))
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncStageTransition(branch, stage.Name, "passed")
	}
	s.logAudit(ctx, audit.EventStagePassed, sess,
		"user_id", userID,
		"stage", stage.Name,
	)
	return view(sess), nil
}

func (s *Service) Back(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Back(); err != nil {
		return nil, err
	}
	return view(sess), nil
}

func (s *Service) GoTo(ctx context.Context, userID id.UserID, sessionID id.SessionID, index int) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.GoTo(index); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// Submit sends the confirmed draft. The result is returned together with the
// error when the submission ran but failed, so callers can show which step
// failed and whether an account already exists.
func (s *Service) Submit(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.SubmissionResult, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	draft, err := sess.BeginSubmit()
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventSubmissionStarted, sess,
		"user_id", userID,
		"branch", draft.Branch,
	)

	out, err := s.submitter.Submit(ctx, submission.Request{
		SessionID: sessionID,
		UserID:    userID,
		Draft:     draft,
		Token:     requestcontext.BearerToken(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Device:    device.Label(ctx),
	})
	if out == nil {
		if abortErr := sess.AbortSubmit(); abortErr != nil {
			s.logger.ErrorContext(ctx, "failed to return session to confirmation",
				"session_id", sessionID,
				"error", abortErr,
			)
		}
		if err == nil {
			err = dErrors.New(dErrors.CodeInternal, "submission produced no result")
		}
		return nil, err
	}

	if completeErr := sess.Complete(out.Result, out.Draft); completeErr != nil {
		return out.Result, dErrors.Wrap(completeErr, dErrors.CodeInternal, "failed to record submission outcome")
	}
	sess.Touch(s.now())
	if err != nil {
		var fe *submission.FailureError
		step := ""
		if errors.As(err, &fe) {
			step = string(fe.Step)
		}
		s.logAudit(ctx, audit.EventSubmissionFailed, sess,
			"user_id", userID,
			"step", step,
			"reason", dErrors.MessageOf(err),
		)
		return out.Result, err
	}
	return out.Result, nil
}

// Retry returns a failed session to confirmation.
func (s *Service) Retry(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Retry(); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// Abandon discards the draft and returns the session to branch selection.
func (s *Service) Abandon(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	for _, att := range sess.Draft().Attachments {
		if att.File != nil {
			s.encoder.Forget(att.File.ID())
		}
	}
	if err := sess.Abandon(); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventOnboardingAbandoned, sess,
		"user_id", userID,
	)
	return nil
}

// ListSubmissions returns ledger rows for review.
func (s *Service) ListSubmissions(ctx context.Context, filter ledger.Filter) ([]*models.SubmissionRecord, error) {
	records, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list submissions")
	}
	return records, nil
}

// MaxAttachmentBytes is the upload size limit.
func (s *Service) MaxAttachmentBytes() int64 {
	return s.encoder.MaxBytes()
}

// load fetches a session and checks that userID owns it. A session of
// another user is reported as not found so its existence is not disclosed.
func (s *Service) load(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.Session, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "onboarding session not found")
		case errors.Is(err, sentinel.ErrExpired):
			if s.metrics != nil {
				s.metrics.SetSessionsActive(s.sessions.Count())
			}
			return nil, dErrors.New(dErrors.CodeNotFound, "onboarding session expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load onboarding session")
	}
	if sess.UserID != userID {
		s.logger.WarnContext(ctx, "onboarding session owner mismatch",
			"session_id", sessionID,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeNotFound, "onboarding session not found")
	}
	sess.Touch(s.now())
	return sess, nil
}

func (s *Service) observeDraft(change draftstore.Change, d models.Draft) {
	if s.metrics != nil {
		s.metrics.IncDraftChange(string(change.Kind))
	}
	s.logger.Debug("draft changed",
		"kind", change.Kind,
		"section", change.Section,
		"reason", change.Reason,
		"branch", d.Branch,
	)
}

func (s *Service) incAttachment(outcome string) {
	if s.metrics != nil {
		s.metrics.IncAttachmentEncoded(outcome)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, sess *wizard.Session, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	attributes = append(attributes, "session_id", sess.ID)
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	draft := sess.Draft()
	s.auditPublisher.Track(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: s.now(),
		UserID:    sess.UserID,
		SessionID: sess.ID.String(),
		Action:    string(event),
		Branch:    draft.Branch.String(),
		Stage:     attrs.ExtractString(attributes, "stage"),
		Step:      attrs.ExtractString(attributes, "step"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
		Device:    device.Label(ctx),
	})
}

func view(sess *wizard.Session) *wizard.View {
	v := sess.Snapshot()
	return &v
}
