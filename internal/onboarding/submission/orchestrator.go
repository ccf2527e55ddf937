// Package submission drives a confirmed onboarding draft through the ordered
// calls that create the account and complete KYC.
//
// Steps run strictly in order: encode attachments, reconcile, create account,
// complete KYC, mark the active profile, refresh dependent state. The last two
// are best effort. An account created by an earlier attempt of the same
// session is reused, so a retry after a partial submission never creates a
// second account.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"kycportal/internal/onboarding/adapters/account"
	"kycportal/internal/onboarding/encoding"
	"kycportal/internal/onboarding/metrics"
	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/reconcile"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
	"kycportal/pkg/platform/audit"
	"kycportal/pkg/platform/sentinel"
)

// AccountService is the external account/KYC backend.
type AccountService interface {
	CreateAccount(ctx context.Context, token, kind string, profile models.MinimalProfile) (string, error)
	CompleteKYC(ctx context.Context, token, accountType string, payload *models.CanonicalPayload) error
}

// ProfileState marks the new account active and reloads what depends on it.
type ProfileState interface {
	MarkActive(ctx context.Context, userID id.UserID, accountID, accountType string) error
	Refresh(ctx context.Context, userID id.UserID, token string) error
}

// Ledger persists one record per session's submission.
type Ledger interface {
	FindBySession(ctx context.Context, sessionID id.SessionID) (*models.SubmissionRecord, error)
	Save(ctx context.Context, rec *models.SubmissionRecord) error
}

// Guard serializes submissions of one session across instances.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Encoder turns attachment handles into their encoded form.
type Encoder interface {
	Encode(ctx context.Context, slot models.Slot, f models.File) (encoding.Result, error)
}

// AuditPublisher records compliance events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Request is one submission of a confirmed draft.
type Request struct {
	SessionID id.SessionID
	UserID    id.UserID
	Draft     models.Draft
	// Token is the caller's bearer credential forwarded to the account service.
	Token     string
	RequestID string
	Device    string
}

// Outcome is the result of an attempt together with the draft as it stood
// at the end of it, including attachments encoded along the way.
type Outcome struct {
	Result *models.SubmissionResult
	Draft  models.Draft
}

const (
	DefaultTimeout     = 60 * time.Second
	defaultEncodeLimit = 4
	guardSlack         = 5 * time.Second
)

// Orchestrator runs submissions.
type Orchestrator struct {
	accounts    AccountService
	profiles    ProfileState
	ledger      Ledger
	guard       Guard
	encoder     Encoder
	auditor     AuditPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	timeout     time.Duration
	encodeLimit int
	now         func() time.Time

	inflight singleflight.Group
	// unsaved holds account ids created while the ledger rejected writes,
	// keyed by session, until a later save records them.
	unsaved sync.Map
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditor = p
	}
}

func WithGuard(g Guard) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.guard = g
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithTimeout bounds a whole submission. The submission runs detached from
// the caller's cancellation, so this is the only deadline it observes.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithEncodeLimit caps concurrent attachment encodings.
func WithEncodeLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.encodeLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(accounts AccountService, profiles ProfileState, ledger Ledger, encoder Encoder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		accounts:    accounts,
		profiles:    profiles,
		ledger:      ledger,
		encoder:     encoder,
		guard:       NewMemoryGuard(),
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("kycportal/onboarding/submission"),
		timeout:     DefaultTimeout,
		encodeLimit: defaultEncodeLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit runs the submission of req. Concurrent calls for the same session in
// this process share a single execution; a submission already running on
// another instance reports CodeConflict.
//
// Outcome is non-nil whenever the attempt started, also on failure. Failures
// of a step are reported as *FailureError wrapped in a coded error.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	v, err, _ := o.inflight.Do(req.SessionID.String(), func() (any, error) {
		return o.guarded(ctx, req)
	})
	out, _ := v.(*Outcome)
	return out, err
}

func (o *Orchestrator) guarded(ctx context.Context, req Request) (*Outcome, error) {
	release, err := o.guard.Acquire(ctx, req.SessionID.String(), o.timeout+guardSlack)
	if err != nil {
		return nil, err
	}
	defer release()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()
	return o.run(runCtx, req)
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*Outcome, error) {
	start := o.now()
	branch := req.Draft.Branch
	ctx, span := o.tracer.Start(ctx, "onboarding.submit", trace.WithAttributes(
		attribute.String("session_id", req.SessionID.String()),
		attribute.String("branch", branch.String()),
	))
	defer span.End()
	if o.metrics != nil {
		defer o.metrics.ObserveSubmit(start)
	}

	rec, err := o.openRecord(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &models.SubmissionResult{SessionID: req.SessionID, SubmissionID: rec.ID}
	out := &Outcome{Result: result, Draft: req.Draft}
	a := &attempt{req: req, rec: rec, result: result}

	if err := o.step(ctx, a, models.StepEncodeAttachments, func(ctx context.Context) error {
		d, err := o.encodeAttachments(ctx, out.Draft)
		out.Draft = d
		return err
	}); err != nil {
		return out, o.fail(ctx, a, models.StepEncodeAttachments, err)
	}

	var payload *models.CanonicalPayload
	if err := o.step(ctx, a, models.StepReconcile, func(context.Context) error {
		p, err := reconcile.Reconcile(out.Draft)
		payload = p
		return err
	}); err != nil {
		return out, o.fail(ctx, a, models.StepReconcile, err)
	}

	if rec.AccountID != "" {
		result.Record(models.StepCreateAccount, models.StepSkipped, nil)
		result.Resumed = true
		result.AccountID = rec.AccountID
		o.logger.InfoContext(ctx, "submission resumed with existing account",
			"session_id", req.SessionID,
			"account_id", rec.AccountID,
		)
	} else {
		if err := o.step(ctx, a, models.StepCreateAccount, func(ctx context.Context) error {
			accountID, err := o.accounts.CreateAccount(ctx, req.Token, branch.AccountType(), minimalProfile(out.Draft))
			if err != nil {
				return err
			}
			result.AccountID = accountID
			rec.AccountID = accountID
			rec.Status = models.SubmissionAccountCreated
			if err := o.save(ctx, rec); err != nil {
				// The account exists; the id is saved again by the next write.
				o.logger.ErrorContext(ctx, "failed to record created account",
					"session_id", req.SessionID,
					"account_id", accountID,
					"error", err,
				)
			}
			return nil
		}); err != nil {
			return out, o.fail(ctx, a, models.StepCreateAccount, err)
		}
		o.emit(ctx, a, audit.EventAccountCreated, models.StepCreateAccount, "")
	}

	if err := o.step(ctx, a, models.StepCompleteKYC, func(ctx context.Context) error {
		return o.accounts.CompleteKYC(ctx, req.Token, branch.AccountType(), payload)
	}); err != nil {
		return out, o.fail(ctx, a, models.StepCompleteKYC, err)
	}
	rec.Status = models.SubmissionKYCCompleted
	rec.FailedStep = ""
	rec.LastError = ""
	if err := o.save(ctx, rec); err != nil {
		// KYC is complete on the backend; the ledger catches up on the next read.
		o.logger.ErrorContext(ctx, "failed to record completed submission",
			"session_id", req.SessionID,
			"error", err,
		)
	}
	o.emit(ctx, a, audit.EventKYCCompleted, models.StepCompleteKYC, "")

	o.bestEffort(ctx, a, models.StepMarkActive, func(ctx context.Context) error {
		return o.profiles.MarkActive(ctx, req.UserID, result.AccountID, branch.AccountType())
	})
	o.bestEffort(ctx, a, models.StepRefresh, func(ctx context.Context) error {
		return o.profiles.Refresh(ctx, req.UserID, req.Token)
	})

	result.CompletedAt = o.now()
	if o.metrics != nil {
		o.metrics.IncSubmission(branch.String(), "success")
	}
	o.logger.InfoContext(ctx, "submission completed",
		"session_id", req.SessionID,
		"user_id", req.UserID,
		"branch", branch,
		"account_id", result.AccountID,
		"resumed", result.Resumed,
	)
	return out, nil
}

// attempt carries the mutable state of one run.
type attempt struct {
	req    Request
	rec    *models.SubmissionRecord
	result *models.SubmissionResult
}

// openRecord loads the session's ledger row, or starts one.
func (o *Orchestrator) openRecord(ctx context.Context, req Request) (*models.SubmissionRecord, error) {
	now := o.now()
	rec, err := o.ledger.FindBySession(ctx, req.SessionID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		rec = &models.SubmissionRecord{
			ID:        id.NewSubmissionID(),
			SessionID: req.SessionID,
			UserID:    req.UserID,
			Branch:    req.Draft.Branch,
			Status:    models.SubmissionPending,
			CreatedAt: now,
		}
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission record")
	}
	if rec.AccountID == "" {
		if accountID, ok := o.unsaved.Load(req.SessionID); ok {
			rec.AccountID = accountID.(string)
			rec.Status = models.SubmissionAccountCreated
		}
	}
	switch {
	case rec.Status == models.SubmissionKYCCompleted:
		return nil, dErrors.New(dErrors.CodeConflict, "this session was already submitted")
	case rec.AccountID != "" && rec.Branch != req.Draft.Branch:
		return nil, dErrors.New(dErrors.CodeConflict,
			"an account was already created for branch "+rec.Branch.String())
	}
	rec.Attempts++
	if err := o.save(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save submission record")
	}
	return rec, nil
}

// save writes rec to the ledger. An account id that could not be written is
// remembered in process so a retry of the session still reuses the account.
func (o *Orchestrator) save(ctx context.Context, rec *models.SubmissionRecord) error {
	rec.UpdatedAt = o.now()
	err := o.ledger.Save(ctx, rec)
	if rec.AccountID != "" {
		if err != nil {
			o.unsaved.Store(rec.SessionID, rec.AccountID)
		} else {
			o.unsaved.Delete(rec.SessionID)
		}
	}
	return err
}

// step runs one mandatory step in its own span and records its outcome.
func (o *Orchestrator) step(ctx context.Context, a *attempt, step models.Step, fn func(context.Context) error) error {
	start := o.now()
	ctx, span := o.tracer.Start(ctx, "onboarding.submit."+string(step))
	defer span.End()
	err := fn(ctx)
	if o.metrics != nil {
		o.metrics.ObserveStep(string(step), start)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	a.result.Record(step, models.StepSucceeded, nil)
	return nil
}

func (o *Orchestrator) bestEffort(ctx context.Context, a *attempt, step models.Step, fn func(context.Context) error) {
	ctx, span := o.tracer.Start(ctx, "onboarding.submit."+string(step))
	defer span.End()
	err := fn(ctx)
	a.result.RecordBestEffort(step, err)
	if err != nil {
		span.RecordError(err)
		o.logger.WarnContext(ctx, "best-effort submission step failed",
			"session_id", a.req.SessionID,
			"step", step,
			"error", err,
		)
	}
}

// fail records a failed mandatory step in the result and the ledger and
// returns the error reported to the caller.
func (o *Orchestrator) fail(ctx context.Context, a *attempt, step models.Step, cause error) error {
	result, rec := a.result, a.rec
	result.Record(step, models.StepFailed, cause)
	result.CompletedAt = o.now()
	result.AccountID = rec.AccountID
	result.Partial = rec.AccountID != ""

	rec.FailedStep = step
	rec.LastError = cause.Error()
	if rec.AccountID == "" {
		rec.Status = models.SubmissionFailed
	}
	if err := o.save(ctx, rec); err != nil {
		o.logger.ErrorContext(ctx, "failed to record submission failure",
			"session_id", a.req.SessionID,
			"error", err,
		)
	}

	outcome := "failed"
	if result.Partial {
		outcome = "partial"
		o.emit(ctx, a, audit.EventSubmissionPartial, step, cause.Error())
	}
	if o.metrics != nil {
		o.metrics.IncSubmission(a.req.Draft.Branch.String(), outcome)
	}
	trace.SpanFromContext(ctx).SetStatus(codes.Error, string(step)+" failed")
	o.logger.WarnContext(ctx, "submission failed",
		"session_id", a.req.SessionID,
		"user_id", a.req.UserID,
		"branch", a.req.Draft.Branch,
		"step", step,
		"partial", result.Partial,
		"error", cause,
	)

	fe := &FailureError{Step: step, AccountID: rec.AccountID, Partial: result.Partial, Err: cause}
	return dErrors.Wrap(fe, codeFor(step, cause), messageFor(step, result.Partial))
}

// emit writes a compliance event. The audited fact already happened on the
// account service, so a failed write is logged and marked on the span rather
// than failing the submission.
func (o *Orchestrator) emit(ctx context.Context, a *attempt, event audit.AuditEvent, step models.Step, reason string) {
	if o.auditor == nil {
		return
	}
	err := o.auditor.Emit(ctx, audit.Event{
		Timestamp: o.now(),
		UserID:    a.req.UserID,
		SessionID: a.req.SessionID.String(),
		Action:    string(event),
		Branch:    a.req.Draft.Branch.String(),
		Step:      string(step),
		AccountID: a.rec.AccountID,
		Reason:    reason,
		RequestID: a.req.RequestID,
		Device:    a.req.Device,
	})
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("audit.incomplete", true))
		o.logger.ErrorContext(ctx, "compliance audit event not recorded",
			"event", event,
			"session_id", a.req.SessionID,
			"error", err,
		)
	}
}

// encodeAttachments encodes every selected attachment that lacks its encoded
// form, with bounded concurrency. Either all results are applied or none.
func (o *Orchestrator) encodeAttachments(ctx context.Context, d models.Draft) (models.Draft, error) {
	var pending []models.Slot
	for slot, att := range d.Attachments {
		if att.File != nil && !att.IsEncoded() {
			pending = append(pending, slot)
		}
	}
	if len(pending) == 0 {
		return d, nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	results := make([]encoding.Result, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.encodeLimit)
	for i, slot := range pending {
		file := d.Attachments[slot].File
		g.Go(func() error {
			res, err := o.encoder.Encode(gctx, slot, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return d, err
	}

	next := d
	for i, slot := range pending {
		var err error
		next, err = models.SetEncoded(next, slot, results[i].FileID, results[i].Encoded, results[i].Fingerprint)
		if err != nil {
			return d, err
		}
	}
	return next, nil
}

// minimalProfile is the branch-appropriate subset sent with account creation.
func minimalProfile(d models.Draft) models.MinimalProfile {
	p := models.MinimalProfile{
		Email:        strings.TrimSpace(d.Contact.Email),
		MobileNumber: strings.TrimSpace(d.Contact.MobileNumber),
	}
	switch {
	case d.Entity != nil && d.Branch.IsNonIndividual():
		p.DisplayName = firstNonEmpty(d.Entity.BusinessName, d.Entity.EntityName, d.Contact.FullName)
	case d.Lender != nil && d.Branch.IsDirectLender():
		p.DisplayName = firstNonEmpty(d.Lender.CompanyName, d.Contact.FullName,
			joinNonEmpty(d.Lender.FirstName, d.Lender.LastName))
	case d.Person != nil:
		p.DisplayName = firstNonEmpty(d.Contact.FullName, joinNonEmpty(d.Person.FirstName, d.Person.LastName))
	default:
		p.DisplayName = d.Contact.FullName
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func codeFor(step models.Step, err error) dErrors.Code {
	var encErr *encoding.EncodingError
	var svcErr *account.ServiceError
	switch {
	case errors.As(err, &encErr):
		return dErrors.CodeEncoding
	case step == models.StepReconcile:
		return dErrors.CodeInvariantViolation
	case errors.Is(err, account.ErrCircuitOpen):
		return dErrors.CodeUnavailable
	case errors.As(err, &svcErr):
		return dErrors.CodeBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.CodeTimeout
	}
	return dErrors.CodeOf(err)
}

func messageFor(step models.Step, partial bool) string {
	if partial {
		return "the account was created but KYC was not completed; retry to finish"
	}
	switch step {
	case models.StepEncodeAttachments:
		return "an attachment could not be encoded"
	case models.StepReconcile:
		return "the draft could not be converted for submission"
	case models.StepCreateAccount:
		return "the account could not be created"
	}
	return "the submission failed"
}
