package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"kycportal/internal/onboarding/encoding"
	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/store/ledger"
	"kycportal/internal/onboarding/submission"
	"kycportal/internal/onboarding/validation"
	"kycportal/internal/onboarding/wizard"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
	"kycportal/pkg/platform/httputil"
	"kycportal/pkg/requestcontext"
)

const (
	// multipartOverhead is allowed on top of the attachment limit for the
	// multipart envelope.
	multipartOverhead = 64 << 10
	multipartMemory   = 1 << 20
)

// Service defines the onboarding operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context, userID id.UserID, flow string) (*wizard.View, error)
	Get(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error)
	Branches(ctx context.Context, userID id.UserID, sessionID id.SessionID) ([]models.Branch, error)
	SelectBranch(ctx context.Context, userID id.UserID, sessionID id.SessionID, branch string) (*wizard.View, error)
	Patch(ctx context.Context, userID id.UserID, sessionID id.SessionID, patch models.Patch) (*wizard.View, error)
	Attach(ctx context.Context, userID id.UserID, sessionID id.SessionID, slot models.Slot, f models.File) (*wizard.View, error)
	Detach(ctx context.Context, userID id.UserID, sessionID id.SessionID, slot models.Slot) (*wizard.View, error)
	Advance(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error)
	Back(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error)
	GoTo(ctx context.Context, userID id.UserID, sessionID id.SessionID, index int) (*wizard.View, error)
	Submit(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.SubmissionResult, error)
	Retry(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error)
	Abandon(ctx context.Context, userID id.UserID, sessionID id.SessionID) error
	ListSubmissions(ctx context.Context, filter ledger.Filter) ([]*models.SubmissionRecord, error)
	MaxAttachmentBytes() int64
}

// Handler wires onboarding endpoints to the wizard service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an onboarding handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the user-facing wizard endpoints. Callers apply
// authentication to r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/onboarding/sessions", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.sessionAction("get", h.service.Get))
			r.Delete("/", h.HandleAbandon)
			r.Get("/branches", h.HandleBranches)
			r.Put("/branch", h.HandleSelectBranch)
			r.Patch("/draft", h.HandlePatch)
			r.Put("/attachments/{slot}", h.HandleAttach)
			r.Delete("/attachments/{slot}", h.HandleDetach)
			r.Post("/advance", h.sessionAction("advance", h.service.Advance))
			r.Post("/back", h.sessionAction("back", h.service.Back))
			r.Post("/goto/{index}", h.HandleGoTo)
			r.Post("/submit", h.HandleSubmit)
			r.Post("/retry", h.sessionAction("retry", h.service.Retry))
		})
	})
}

// RegisterAdmin mounts the review endpoints. Callers apply the admin token
// check to r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/onboarding/submissions", h.HandleListSubmissions)
}

// HandleStart handles POST /onboarding/sessions.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.Start(ctx, userID, req.Flow)
	if err != nil {
		h.writeError(ctx, w, "start", err, nil)
		return
	}
	h.logger.InfoContext(ctx, "onboarding session opened",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"session_id", view.ID,
		"flow", view.Flow,
	)
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleBranches handles GET /onboarding/sessions/{id}/branches.
func (h *Handler) HandleBranches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	branches, err := h.service.Branches(ctx, userID, sessionID)
	if err != nil {
		h.writeError(ctx, w, "branches", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BranchesResponse{Branches: branches})
}

// HandleSelectBranch handles PUT /onboarding/sessions/{id}/branch.
func (h *Handler) HandleSelectBranch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SelectBranchRequest](w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.service.SelectBranch(ctx, userID, sessionID, req.Branch)
	if err != nil {
		h.writeError(ctx, w, "select_branch", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandlePatch handles PATCH /onboarding/sessions/{id}/draft.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PatchRequest](w, r, h.logger)
	if !ok {
		return
	}
	view, err := h.service.Patch(ctx, userID, sessionID, req.Patch)
	if err != nil {
		h.writeError(ctx, w, "patch", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleAttach handles PUT /onboarding/sessions/{id}/attachments/{slot}. The
// file is read from the multipart field "file".
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	slot := models.Slot(chi.URLParam(r, "slot"))
	limit := h.service.MaxAttachmentBytes()

	if r.ContentLength > limit+multipartOverhead {
		h.writeError(ctx, w, "attach", &encoding.EncodingError{Slot: slot, Cause: encoding.ErrTooLarge}, nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(ctx, w, "attach", &encoding.EncodingError{Slot: slot, Cause: encoding.ErrTooLarge}, nil)
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "expected a multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the encoder to reject the file.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.writeError(ctx, w, "attach", &encoding.EncodingError{Slot: slot, Cause: err}, nil)
		return
	}

	f := models.NewBlobFile(header.Filename, header.Header.Get("Content-Type"), data)
	view, err := h.service.Attach(ctx, userID, sessionID, slot, f)
	if err != nil {
		h.writeError(ctx, w, "attach", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDetach handles DELETE /onboarding/sessions/{id}/attachments/{slot}.
func (h *Handler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	view, err := h.service.Detach(ctx, userID, sessionID, models.Slot(chi.URLParam(r, "slot")))
	if err != nil {
		h.writeError(ctx, w, "detach", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleGoTo handles POST /onboarding/sessions/{id}/goto/{index}.
func (h *Handler) HandleGoTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "stage index must be a number"))
		return
	}
	view, err := h.service.GoTo(ctx, userID, sessionID, index)
	if err != nil {
		h.writeError(ctx, w, "goto", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSubmit handles POST /onboarding/sessions/{id}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	result, err := h.service.Submit(ctx, userID, sessionID)
	if err != nil {
		h.writeError(ctx, w, "submit", err, result)
		return
	}
	h.logger.InfoContext(ctx, "onboarding submitted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"session_id", sessionID,
		"account_id", result.AccountID,
		"resumed", result.Resumed,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAbandon handles DELETE /onboarding/sessions/{id}.
func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	if err := h.service.Abandon(ctx, userID, sessionID); err != nil {
		h.writeError(ctx, w, "abandon", err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListSubmissions handles GET /admin/onboarding/submissions. The status
// parameter accepts ledger statuses and "partial", comma separated or
// repeated.
func (h *Handler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter ledger.Filter
	for _, raw := range q["status"] {
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if strings.EqualFold(value, "partial") {
				filter.PartialOnly = true
				continue
			}
			status, err := models.ParseSubmissionStatus(value)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive number"))
			return
		}
		filter.Limit = limit
	}

	records, err := h.service.ListSubmissions(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, "list_submissions", err, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmissionsResponse{Submissions: records, Count: len(records)})
}

type sessionFunc func(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*wizard.View, error)

// sessionAction adapts a service call that only needs the session to a
// handler returning the session view.
func (h *Handler) sessionAction(action string, fn sessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, sessionID, ok := h.sessionParams(w, r)
		if !ok {
			return
		}
		view, err := fn(ctx, userID, sessionID)
		if err != nil {
			h.writeError(ctx, w, action, err, nil)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
	}
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) sessionParams(w http.ResponseWriter, r *http.Request) (id.UserID, id.SessionID, bool) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return id.UserID{}, id.SessionID{}, false
	}
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.SessionID{}, false
	}
	return userID, sessionID, true
}

// writeError renders the onboarding error taxonomy: field errors and encoding
// failures are 422, a failed submission carries the failed step and, when the
// account already exists, the account id.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, action string, err error, result *models.SubmissionResult) {
	status, body := h.errorBody(err, result)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"action", action,
		"status", status,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "onboarding request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "onboarding request rejected", attrs...)
	}
	if body == nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, status, body)
}

func (h *Handler) errorBody(err error, result *models.SubmissionResult) (int, any) {
	if fe, ok := validation.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity, FieldErrorsResponse{
			Error:            string(dErrors.CodeValidation),
			ErrorDescription: "some fields need attention",
			Fields:           fe,
		}
	}

	var encErr *encoding.EncodingError
	isEncoding := errors.As(err, &encErr)

	var failure *submission.FailureError
	if errors.As(err, &failure) {
		resp := SubmissionErrorResponse{
			Error:            "submission_failed",
			ErrorDescription: dErrors.MessageOf(err),
			FailedStep:       failure.Step,
			AccountID:        failure.AccountID,
			Result:           result,
		}
		if isEncoding {
			resp.Slot = encErr.Slot
		}
		status := httputil.StatusFor(dErrors.CodeOf(err))
		if failure.Partial {
			resp.Error = "partial_submission"
			status = http.StatusBadGateway
		}
		return status, resp
	}

	if isEncoding {
		return http.StatusUnprocessableEntity, EncodingErrorResponse{
			Error:            string(dErrors.CodeEncoding),
			ErrorDescription: encErr.Cause.Error(),
			Slot:             encErr.Slot,
		}
	}
	return httputil.StatusFor(dErrors.CodeOf(err)), nil
}
