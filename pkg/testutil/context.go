package testutil

import (
	"net/http"

	id "kycportal/pkg/domain"
	"kycportal/pkg/requestcontext"
)

// WithAuth stores what RequireAuth would: the caller's user ID and the bearer
// token forwarded to the account service. An unparsable userID is skipped so
// tests can exercise the unauthenticated path.
func WithAuth(req *http.Request, userID, token string) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsed)
	}
	if token != "" {
		ctx = requestcontext.WithBearerToken(ctx, token)
	}
	return req.WithContext(ctx)
}
