package wizard

import (
	"time"

	"kycportal/internal/onboarding/models"
	id "kycportal/pkg/domain"
)

// StageView is the progress of one stage.
type StageView struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Passed  bool   `json:"passed"`
	Dirty   bool   `json:"dirty"`
	Current bool   `json:"current"`
}

// View is a consistent snapshot of a session.
type View struct {
	ID         id.SessionID             `json:"id"`
	UserID     id.UserID                `json:"userId"`
	Flow       models.Flow              `json:"flow"`
	Branch     models.Branch            `json:"branch,omitempty"`
	State      models.State             `json:"state"`
	Current    int                      `json:"current"`
	Stages     []StageView              `json:"stages"`
	Draft      models.Draft             `json:"draft"`
	Slots      map[models.Slot]SlotView `json:"attachments"`
	LastResult *models.SubmissionResult `json:"lastResult,omitempty"`
	CreatedAt  time.Time                `json:"createdAt"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

// SlotView describes an attachment without its content.
type SlotView struct {
	FileName string `json:"fileName,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Encoded  bool   `json:"encoded"`
}

// CurrentStage returns the stage being edited, if any.
func (v View) CurrentStage() (StageView, bool) {
	for _, st := range v.Stages {
		if st.Current {
			return st, true
		}
	}
	return StageView{}, false
}

// Snapshot returns the session view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.drafts.Read()
	v := View{
		ID:         s.ID,
		UserID:     s.UserID,
		Flow:       s.Flow,
		Branch:     d.Branch,
		State:      s.state,
		Current:    s.current,
		Stages:     make([]StageView, 0, len(s.stages)),
		Draft:      d,
		Slots:      make(map[models.Slot]SlotView, len(d.Attachments)),
		LastResult: s.lastResult,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.state == models.StateConfirmation {
		v.Current = len(s.stages)
	}
	for i, stage := range s.stages {
		passed := s.passed[i] != ""
		v.Stages = append(v.Stages, StageView{
			Index:   i,
			Name:    stage.Name,
			Title:   stage.Title,
			Passed:  passed,
			Dirty:   passed && !s.isClean(i, d),
			Current: s.state == models.StateStage && i == s.current,
		})
	}
	for slot, att := range d.Attachments {
		sv := SlotView{Encoded: att.IsEncoded()}
		if att.File != nil {
			sv.FileName = att.File.Name()
			sv.Size = att.File.Size()
		}
		v.Slots[slot] = sv
	}
	return v
}
