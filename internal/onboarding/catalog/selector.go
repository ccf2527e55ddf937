package catalog

import (
	"slices"

	"kycportal/internal/onboarding/models"
	dErrors "kycportal/pkg/domain-errors"
)

// Selector applies a branch choice to a draft.
type Selector struct {
	catalog *Catalog
}

func NewSelector(c *Catalog) *Selector {
	return &Selector{catalog: c}
}

// Offer lists the branches available from a flow.
func (s *Selector) Offer(flow models.Flow) []models.Branch {
	return s.catalog.Offer(flow)
}

// Select activates branch for the draft and returns the new draft with its
// pipeline. Branches not offered by the flow are rejected. Switching branch
// resets branch-specific data and drops attachments the new pipeline has no
// slot for; selecting the active branch leaves the draft untouched.
func (s *Selector) Select(d models.Draft, flow models.Flow, branch models.Branch) (models.Draft, []models.Stage, error) {
	if !slices.Contains(s.catalog.Offer(flow), branch) {
		return d, nil, dErrors.New(dErrors.CodeInvalidInput, "branch "+branch.String()+" is not offered by the "+flow.String()+" flow")
	}
	stages, ok := s.catalog.Pipeline(branch)
	if !ok {
		return d, nil, dErrors.New(dErrors.CodeInternal, "no pipeline for branch "+branch.String())
	}
	slots := s.catalog.Slots(branch)
	next := models.SwitchBranch(d, branch, func(slot models.Slot) bool {
		return slices.Contains(slots, slot)
	})
	return next, stages, nil
}
