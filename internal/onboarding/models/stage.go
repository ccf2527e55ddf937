package models

// FieldRule describes one draft field a stage is responsible for.
type FieldRule struct {
	Section    Section `json:"section"`
	Name       string  `json:"name"`
	Label      string  `json:"label,omitempty"`
	Required   bool    `json:"required,omitempty"`
	MinLength  int     `json:"minLength,omitempty"`
	MustAccept bool    `json:"mustAccept,omitempty"`
	Numeric    bool    `json:"numeric,omitempty"`
	Email      bool    `json:"email,omitempty"`
}

// FileRule describes an attachment slot on a stage.
type FileRule struct {
	Slot     Slot   `json:"slot"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Stage is one ordered data-collection step of a branch pipeline.
type Stage struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Fields []FieldRule `json:"fields"`
	Files  []FileRule  `json:"files,omitempty"`
}

// Slots lists the attachment slots of the stage.
func (s Stage) Slots() []Slot {
	out := make([]Slot, 0, len(s.Files))
	for _, f := range s.Files {
		out = append(out, f.Slot)
	}
	return out
}

// State is the wizard position of a session.
type State string

const (
	StateBranchSelection State = "branch_selection"
	StateStage           State = "stage"
	StateConfirmation    State = "confirmation"
	StateSubmitting      State = "submitting"
	StateSuccess         State = "success"
	StateFailed          State = "failed"
)

// IsTerminal reports whether the session has left the editable states.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

// IsEditable reports whether draft patches and uploads are accepted.
func (s State) IsEditable() bool {
	return s == StateStage || s == StateConfirmation
}
