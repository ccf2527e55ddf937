package handler

import (
	"bytes"
	"strings"

	"kycportal/internal/onboarding/models"
	dErrors "kycportal/pkg/domain-errors"
)

// StartRequest is the body of POST /onboarding/sessions.
type StartRequest struct {
	Flow string `json:"flow"`
}

func (r *StartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Flow = strings.TrimSpace(r.Flow)
	if r.Flow == "" {
		return dErrors.New(dErrors.CodeValidation, "flow is required")
	}
	return nil
}

// SelectBranchRequest is the body of PUT /onboarding/sessions/{id}/branch.
type SelectBranchRequest struct {
	Branch string `json:"branch"`
}

func (r *SelectBranchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Branch = strings.TrimSpace(r.Branch)
	if r.Branch == "" {
		return dErrors.New(dErrors.CodeValidation, "branch is required")
	}
	return nil
}

// PatchRequest is the body of PATCH /onboarding/sessions/{id}/draft. Fields
// holds only the keys being changed.
type PatchRequest struct {
	models.Patch
}

func (r *PatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(string(r.Section)) == "" {
		return dErrors.New(dErrors.CodeValidation, "section is required")
	}
	fields := bytes.TrimSpace(r.Fields)
	if len(fields) == 0 || fields[0] != '{' {
		return dErrors.New(dErrors.CodeValidation, "fields must be a JSON object")
	}
	return nil
}
