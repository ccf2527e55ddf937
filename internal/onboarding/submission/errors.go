package submission

import (
	"fmt"

	"kycportal/internal/onboarding/models"
)

// FailureError reports the mandatory step a submission stopped at. Partial is
// set when the account exists but KYC was not completed; a retry of the same
// session resumes from there.
type FailureError struct {
	Step      models.Step
	AccountID string
	Partial   bool
	Err       error
}

func (e *FailureError) Error() string {
	if e.Partial {
		return fmt.Sprintf("submission partial at %s (account %s): %v", e.Step, e.AccountID, e.Err)
	}
	return fmt.Sprintf("submission failed at %s: %v", e.Step, e.Err)
}

func (e *FailureError) Unwrap() error {
	return e.Err
}
