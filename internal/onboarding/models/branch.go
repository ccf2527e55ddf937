package models

import (
	"strings"

	dErrors "kycportal/pkg/domain-errors"
)

// Flow is the portal entry point. It constrains which branches are offered.
type Flow string

const (
	FlowBorrower Flow = "borrower"
	FlowInvestor Flow = "investor"
)

// ParseFlow validates a flow at a trust boundary.
func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FlowBorrower, FlowInvestor:
		return f, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "flow is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported flow: "+s)
	}
}

func (f Flow) String() string { return string(f) }

// Branch is the mutually exclusive profile kind selected once per session.
type Branch string

const (
	BranchIndividualBorrower    Branch = "individual_borrower"
	BranchNonIndividualBorrower Branch = "non_individual_borrower"
	BranchIndividualInvestor    Branch = "individual_investor"
	BranchNonIndividualInvestor Branch = "non_individual_investor"
	BranchDirectLender          Branch = "direct_lender"
)

// AllBranches lists every branch in catalogue order.
var AllBranches = []Branch{
	BranchIndividualBorrower,
	BranchNonIndividualBorrower,
	BranchIndividualInvestor,
	BranchNonIndividualInvestor,
	BranchDirectLender,
}

// ParseBranch validates a branch at a trust boundary.
func ParseBranch(s string) (Branch, error) {
	b := Branch(strings.ToLower(strings.TrimSpace(s)))
	if b == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "branch is required")
	}
	if !b.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported branch: "+s)
	}
	return b, nil
}

func (b Branch) IsValid() bool {
	switch b {
	case BranchIndividualBorrower, BranchNonIndividualBorrower,
		BranchIndividualInvestor, BranchNonIndividualInvestor, BranchDirectLender:
		return true
	}
	return false
}

func (b Branch) String() string { return string(b) }

// IsIndividual is true only for the two natural-person branches. A direct
// lender is its own kind and is not an individual account.
func (b Branch) IsIndividual() bool {
	return b == BranchIndividualBorrower || b == BranchIndividualInvestor
}

func (b Branch) IsNonIndividual() bool {
	return b == BranchNonIndividualBorrower || b == BranchNonIndividualInvestor
}

func (b Branch) IsDirectLender() bool {
	return b == BranchDirectLender
}

func (b Branch) IsBorrower() bool {
	return b == BranchIndividualBorrower || b == BranchNonIndividualBorrower
}

// IsInvestor includes the direct lender, which is offered from the investor flow.
func (b Branch) IsInvestor() bool {
	return b == BranchIndividualInvestor || b == BranchNonIndividualInvestor || b == BranchDirectLender
}

// AccountType is the value sent as the KYC accountType path segment and the
// profile kind marked active after a successful submission.
func (b Branch) AccountType() string {
	switch {
	case b.IsDirectLender():
		return "lender"
	case b.IsBorrower():
		return "borrower"
	case b.IsInvestor():
		return "investor"
	}
	return ""
}
