// Package account is the REST client of the external account and KYC service.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kycportal/internal/onboarding/models"
	"kycportal/pkg/platform/circuit"
)

const maxResponseBytes = 1 << 20

// Client calls the account service on behalf of the signed-in user. Every
// call forwards the user's bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBreaker fails calls fast while the service is considered down. Only
// outages and timeouts count as failures; rejections do not.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New builds a client for baseURL, e.g. https://accounts.internal/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createAccountRequest struct {
	Kind    string                `json:"kind"`
	Profile models.MinimalProfile `json:"profile"`
}

type envelope struct {
	Success   *bool  `json:"success"`
	AccountID string `json:"accountId"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

// CreateAccount creates the portal account of the given kind and returns its id.
func (c *Client) CreateAccount(ctx context.Context, token, kind string, profile models.MinimalProfile) (string, error) {
	const op = "create_account"
	var env envelope
	if err := c.do(ctx, op, http.MethodPost, "/accounts", token, createAccountRequest{Kind: kind, Profile: profile}, &env); err != nil {
		return "", err
	}
	if err := requireSuccess(op, env); err != nil {
		return "", err
	}
	if strings.TrimSpace(env.AccountID) == "" {
		return "", newServiceError(ErrorBadData, op, http.StatusOK, "response has no accountId", "", nil)
	}
	return env.AccountID, nil
}

// CompleteKYC submits the canonical payload for an account type.
func (c *Client) CompleteKYC(ctx context.Context, token, accountType string, payload *models.CanonicalPayload) error {
	const op = "complete_kyc"
	var env envelope
	if err := c.do(ctx, op, http.MethodPost, "/kyc/"+url.PathEscape(accountType), token, payload, &env); err != nil {
		return err
	}
	return requireSuccess(op, env)
}

// Permissions lists the user's permission names.
func (c *Client) Permissions(ctx context.Context, token string) ([]string, error) {
	var resp struct {
		Permissions []string `json:"permissions"`
	}
	if err := c.do(ctx, "get_permissions", http.MethodGet, "/me/permissions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Permissions, nil
}

// AccountSummary is one row of the user's account list.
type AccountSummary struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Accounts lists the user's accounts.
func (c *Client) Accounts(ctx context.Context, token string) ([]AccountSummary, error) {
	var resp struct {
		Accounts []AccountSummary `json:"accounts"`
	}
	if err := c.do(ctx, "list_accounts", http.MethodGet, "/accounts", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// Profile is the user profile as the account service sees it.
type Profile struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	ActiveAccountID string `json:"activeAccountId"`
}

// Profile fetches the signed-in user's profile.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, "get_profile", http.MethodGet, "/me", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireSuccess(op string, env envelope) error {
	if env.Success == nil {
		return newServiceError(ErrorBadData, op, http.StatusOK, "response has no success flag", "", nil)
	}
	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = "request was not successful"
		}
		return newServiceError(ErrorRejected, op, http.StatusOK, msg, "", nil)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	if strings.TrimSpace(token) == "" {
		return newServiceError(ErrorAuthentication, op, 0, "no credential available", "", nil)
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return newServiceError(ErrorProviderOutage, op, 0, "failing fast", "", ErrCircuitOpen)
	}

	err := c.roundTrip(ctx, op, method, path, token, body, out)
	c.record(ctx, op, err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newServiceError(ErrorInternal, op, 0, "encode request", "", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newServiceError(ErrorInternal, op, 0, "build request", "", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return newServiceError(ErrorTimeout, op, 0, "request timed out", "", err)
		}
		return newServiceError(ErrorProviderOutage, op, 0, "request failed", "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newServiceError(ErrorProviderOutage, op, resp.StatusCode, "read response", "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newServiceError(categoryForStatus(resp.StatusCode), op, resp.StatusCode, errorMessage(raw), string(raw), nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newServiceError(ErrorBadData, op, resp.StatusCode, "response is not JSON", string(raw), err)
	}
	return nil
}

func (c *Client) record(ctx context.Context, op string, err error) {
	if c.breaker == nil {
		return
	}
	var change circuit.StateChange
	if err != nil && IsRetryable(err) && GetCategory(err) != ErrorRateLimited {
		_, change = c.breaker.RecordFailure()
	} else {
		_, change = c.breaker.RecordSuccess()
	}
	if c.logger == nil {
		return
	}
	if change.Opened {
		c.logger.WarnContext(ctx, "account service circuit opened", "breaker", c.breaker.Name(), "operation", op)
	}
	if change.Closed {
		c.logger.InfoContext(ctx, "account service circuit closed", "breaker", c.breaker.Name(), "operation", op)
	}
}

func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuthentication
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrorTimeout
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status >= 500:
		return ErrorProviderOutage
	default:
		return ErrorRejected
	}
}

// errorMessage pulls a message out of a JSON error body, if there is one.
func errorMessage(raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return fmt.Sprintf("unexpected response (%d bytes)", len(raw))
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
