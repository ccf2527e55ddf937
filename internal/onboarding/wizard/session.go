// Package wizard implements the onboarding session: the draft of one user, its
// branch pipeline and the state machine that moves it from branch selection
// through the stages and confirmation to submission.
package wizard

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"kycportal/internal/onboarding/catalog"
	"kycportal/internal/onboarding/draftstore"
	"kycportal/internal/onboarding/encoding"
	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/validation"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
)

// Session is one user's onboarding attempt for a flow. All transitions are
// serialized on the session mutex; the draft itself is owned by a
// draftstore.Store.
type Session struct {
	ID        id.SessionID
	UserID    id.UserID
	Flow      models.Flow
	CreatedAt time.Time

	selector *catalog.Selector
	drafts   *draftstore.Store

	mu         sync.Mutex
	updatedAt  time.Time
	state      models.State
	stages     []models.Stage
	current    int
	passed     []string
	lastResult *models.SubmissionResult
}

// New opens a session in branch selection.
func New(sessionID id.SessionID, userID id.UserID, flow models.Flow, selector *catalog.Selector, now time.Time) *Session {
	return &Session{
		ID:        sessionID,
		UserID:    userID,
		Flow:      flow,
		CreatedAt: now,
		selector:  selector,
		drafts:    draftstore.New(),
		updatedAt: now,
		state:     models.StateBranchSelection,
	}
}

// Watch forwards draft transitions to o.
func (s *Session) Watch(o draftstore.Observer) {
	s.drafts.Watch(o)
}

// Touch records activity for expiry.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = now
}

// UpdatedAt is the time of the last transition or touch.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// State returns the current wizard state.
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() models.Draft {
	return s.drafts.Read()
}

// Offer lists the branches of the session's flow.
func (s *Session) Offer() []models.Branch {
	return s.selector.Offer(s.Flow)
}

// SelectBranch activates branch and moves to its first stage. Switching to a
// different branch restarts progress; choosing the active branch again keeps
// the draft and progress as they are.
func (s *Session) SelectBranch(branch models.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateBranchSelection && !s.state.IsEditable() {
		return stateError("select a branch", s.state)
	}

	current := s.drafts.Read()
	if current.Branch == branch && s.stages != nil {
		if s.state == models.StateBranchSelection {
			s.state = models.StateStage
		}
		return nil
	}

	var stages []models.Stage
	_, err := s.drafts.Replace("select_branch", func(d models.Draft) (models.Draft, error) {
		next, pipeline, err := s.selector.Select(d, s.Flow, branch)
		stages = pipeline
		return next, err
	})
	if err != nil {
		return err
	}
	s.stages = stages
	s.current = 0
	s.passed = make([]string, len(stages))
	s.state = models.StateStage
	return nil
}

// Patch merges stage-local values into the draft.
func (s *Session) Patch(p models.Patch) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsEditable() {
		return models.Draft{}, stateError("edit the draft", s.state)
	}
	return s.drafts.Update(p)
}

// SelectFile places f in slot, discarding any earlier encoding.
func (s *Session) SelectFile(slot models.Slot, f models.File) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSlot(slot); err != nil {
		return models.Draft{}, err
	}
	return s.drafts.Replace("select_file", func(d models.Draft) (models.Draft, error) {
		return models.SelectFile(d, slot, f), nil
	})
}

// RemoveFile empties slot.
func (s *Session) RemoveFile(slot models.Slot) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSlot(slot); err != nil {
		return models.Draft{}, err
	}
	return s.drafts.Replace("remove_file", func(d models.Draft) (models.Draft, error) {
		return models.RemoveFile(d, slot), nil
	})
}

// SetEncoded attaches an encoding result. It fails with a conflict when the
// slot was given another file since the encoding started.
func (s *Session) SetEncoded(slot models.Slot, res encoding.Result) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Replace("set_encoded", func(d models.Draft) (models.Draft, error) {
		return models.SetEncoded(d, slot, res.FileID, res.Encoded, res.Fingerprint)
	})
}

// AttachEncoded puts f in slot together with its encoding result in one
// transition, so a concurrent upload to the same slot cannot leave either
// handle unencoded.
func (s *Session) AttachEncoded(slot models.Slot, f models.File, res encoding.Result) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSlot(slot); err != nil {
		return models.Draft{}, err
	}
	return s.drafts.Replace("attach_file", func(d models.Draft) (models.Draft, error) {
		return models.SetEncoded(models.SelectFile(d, slot, f), slot, res.FileID, res.Encoded, res.Fingerprint)
	})
}

func (s *Session) checkSlot(slot models.Slot) error {
	if !s.state.IsEditable() {
		return stateError("change attachments", s.state)
	}
	for _, st := range s.stages {
		if slices.Contains(st.Slots(), slot) {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("slot %q is not part of this branch", slot))
}

// Advance validates the current stage. On success the stage is marked passed
// and the session moves to the next stage, or to confirmation after the last
// one. On failure the session stays where it is and the field errors are
// returned.
func (s *Session) Advance() (models.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateStage {
		return models.Stage{}, stateError("advance", s.state)
	}
	stage := s.stages[s.current]
	d := s.drafts.Read()
	if errs := validation.Validate(stage, d); errs != nil {
		s.passed[s.current] = ""
		return stage, errs
	}
	s.passed[s.current] = stageFingerprint(stage, d)
	if s.current == len(s.stages)-1 {
		s.state = models.StateConfirmation
	} else {
		s.current++
	}
	return stage, nil
}

// Back moves one stage back. Values are never cleared.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == models.StateConfirmation:
		s.state = models.StateStage
		s.current = len(s.stages) - 1
	case s.state == models.StateStage && s.current > 0:
		s.current--
	default:
		return stateError("go back", s.state)
	}
	return nil
}

// GoTo jumps to stage index. Index len(stages) addresses confirmation. A jump
// is allowed only when every earlier stage has passed and is unchanged since.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsEditable() {
		return stateError("jump to a stage", s.state)
	}
	if index < 0 || index > len(s.stages) {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("stage index %d out of range", index))
	}
	d := s.drafts.Read()
	for i := 0; i < index; i++ {
		if !s.isClean(i, d) {
			return dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("stage %q must be completed first", s.stages[i].Name))
		}
	}
	if index == len(s.stages) {
		s.state = models.StateConfirmation
		return nil
	}
	s.state = models.StateStage
	s.current = index
	return nil
}

func (s *Session) isClean(i int, d models.Draft) bool {
	return s.passed[i] != "" && s.passed[i] == stageFingerprint(s.stages[i], d)
}

// BeginSubmit moves confirmation to submitting and returns the draft to
// submit. Every stage is validated again first; the first failing stage
// becomes current and its field errors are returned, so invalid data never
// reaches submission.
func (s *Session) BeginSubmit() (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateConfirmation {
		return models.Draft{}, stateError("submit", s.state)
	}
	d := s.drafts.Read()
	for i, stage := range s.stages {
		if errs := validation.Validate(stage, d); errs != nil {
			s.passed[i] = ""
			s.current = i
			s.state = models.StateStage
			return models.Draft{}, errs
		}
		s.passed[i] = stageFingerprint(stage, d)
	}
	s.state = models.StateSubmitting
	return d, nil
}

// Complete records a finished submission. A successful result ends the
// session and discards the draft; a failed one keeps the draft, including the
// attachments encoded during the attempt, for a retry.
func (s *Session) Complete(result *models.SubmissionResult, attempted models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateSubmitting {
		return stateError("complete a submission", s.state)
	}
	s.lastResult = result
	if result.Succeeded() {
		s.state = models.StateSuccess
		s.drafts.Reset()
		return nil
	}
	s.state = models.StateFailed
	_, err := s.drafts.Replace("keep_encodings", func(d models.Draft) (models.Draft, error) {
		return mergeEncodings(d, attempted), nil
	})
	return err
}

// AbortSubmit returns a submitting session to confirmation when the
// submission could not start at all, for example because another instance
// holds the submission lock.
func (s *Session) AbortSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateSubmitting {
		return stateError("abort a submission", s.state)
	}
	s.state = models.StateConfirmation
	return nil
}

// Retry returns a failed session to confirmation with its draft intact.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateFailed {
		return stateError("retry", s.state)
	}
	s.state = models.StateConfirmation
	return nil
}

// Abandon resets the draft and returns to branch selection. A submission in
// flight cannot be abandoned.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == models.StateSubmitting {
		return stateError("abandon", s.state)
	}
	s.drafts.Reset()
	s.state = models.StateBranchSelection
	s.stages = nil
	s.passed = nil
	s.current = 0
	s.lastResult = nil
	return nil
}

// mergeEncodings copies encoded forms from attempted into d for slots that
// still hold the same handle.
func mergeEncodings(d, attempted models.Draft) models.Draft {
	for slot, att := range attempted.Attachments {
		if !att.IsEncoded() || att.File == nil {
			continue
		}
		if next, err := models.SetEncoded(d, slot, att.File.ID(), att.Encoded, att.Fingerprint); err == nil {
			d = next
		}
	}
	return d
}

func stateError(action string, state models.State) error {
	return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("cannot %s while the session is in %s", action, state))
}
