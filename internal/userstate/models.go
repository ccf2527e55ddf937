// Package userstate keeps the per-user state that depends on onboarding: the
// active profile chosen after a submission, and the permissions, accounts and
// profile snapshot refreshed from the account service.
package userstate

import (
	"time"

	id "kycportal/pkg/domain"
)

// Account is one of the user's portal accounts.
type Account struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// State is the cached view of a user.
type State struct {
	UserID            id.UserID `json:"user_id"`
	ActiveAccountID   string    `json:"active_account_id,omitempty"`
	ActiveAccountType string    `json:"active_account_type,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	Permissions       []string  `json:"permissions,omitempty"`
	Accounts          []Account `json:"accounts,omitempty"`
	RefreshedAt       time.Time `json:"refreshed_at,omitzero"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasPermission reports whether the user holds perm.
func (s *State) HasPermission(perm string) bool {
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

func (s *State) clone() *State {
	out := *s
	out.Permissions = append([]string(nil), s.Permissions...)
	out.Accounts = append([]Account(nil), s.Accounts...)
	return &out
}
