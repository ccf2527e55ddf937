package handler

import (
	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/validation"
)

// BranchesResponse lists the branches a session's flow offers.
type BranchesResponse struct {
	Branches []models.Branch `json:"branches"`
}

// SubmissionsResponse is the admin listing of ledger rows.
type SubmissionsResponse struct {
	Submissions []*models.SubmissionRecord `json:"submissions"`
	Count       int                        `json:"count"`
}

// FieldErrorsResponse is returned when a stage fails validation.
type FieldErrorsResponse struct {
	Error            string                  `json:"error"`
	ErrorDescription string                  `json:"error_description"`
	Fields           []validation.FieldError `json:"fields"`
}

// EncodingErrorResponse is returned when an attachment cannot be encoded.
type EncodingErrorResponse struct {
	Error            string      `json:"error"`
	ErrorDescription string      `json:"error_description"`
	Slot             models.Slot `json:"slot"`
}

// SubmissionErrorResponse is returned when a submission ran and failed. The
// draft is kept, so the client may retry.
type SubmissionErrorResponse struct {
	Error            string                   `json:"error"`
	ErrorDescription string                   `json:"error_description"`
	FailedStep       models.Step              `json:"failedStep,omitempty"`
	AccountID        string                   `json:"accountId,omitempty"`
	Slot             models.Slot              `json:"slot,omitempty"`
	Result           *models.SubmissionResult `json:"result,omitempty"`
}
