// Package sentinel holds infrastructure facts returned by stores. Services
// translate them into domain errors; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no session, ledger record or user state under the key.
	ErrNotFound = errors.New("not found")
	// ErrExpired: the session outlived its TTL and was evicted.
	ErrExpired = errors.New("expired")
	// ErrConflict: another holder owns the submission guard.
	ErrConflict = errors.New("conflict")
)
