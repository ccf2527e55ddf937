// Package ledger records one row per onboarding session's submission so a
// partial submission can be resumed and reviewed.
package ledger

import (
	"slices"

	"kycportal/internal/onboarding/models"
)

// Filter selects ledger rows. Zero values match everything.
type Filter struct {
	Statuses    []models.SubmissionStatus
	PartialOnly bool
	Limit       int
}

const defaultLimit = 100

func (f Filter) limit() int {
	if f.Limit <= 0 || f.Limit > 1000 {
		return defaultLimit
	}
	return f.Limit
}

func (f Filter) matches(r *models.SubmissionRecord) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	if f.PartialOnly && !r.IsPartial() {
		return false
	}
	return true
}
