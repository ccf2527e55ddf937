package userstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"kycportal/internal/onboarding/adapters/account"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
	"kycportal/pkg/platform/sentinel"
)

// Store persists user state.
type Store interface {
	Get(ctx context.Context, userID id.UserID) (*State, error)
	Update(ctx context.Context, userID id.UserID, fn func(*State)) (*State, error)
}

// Source is the account service view used to refresh dependent state.
type Source interface {
	Permissions(ctx context.Context, token string) ([]string, error)
	Accounts(ctx context.Context, token string) ([]account.AccountSummary, error)
	Profile(ctx context.Context, token string) (*account.Profile, error)
}

// Service marks the active profile and refreshes the dependent state.
type Service struct {
	store  Store
	source Source
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, source Source, opts ...Option) *Service {
	s := &Service{store: store, source: source, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached state of a user.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*State, error) {
	st, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no state for user")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user state")
	}
	return st, nil
}

// MarkActive makes accountID the user's active profile.
func (s *Service) MarkActive(ctx context.Context, userID id.UserID, accountID, accountType string) error {
	if accountID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}
	_, err := s.store.Update(ctx, userID, func(st *State) {
		st.ActiveAccountID = accountID
		st.ActiveAccountType = accountType
		st.UpdatedAt = s.now()
		for _, a := range st.Accounts {
			if a.ID == accountID {
				return
			}
		}
		st.Accounts = append(st.Accounts, Account{ID: accountID, Type: accountType})
	})
	if err != nil {
		return fmt.Errorf("mark active profile: %w", err)
	}
	return nil
}

// Refresh reloads permissions, accounts and profile concurrently. Whatever
// could be fetched is stored even when other parts fail; the failures are
// joined into the returned error.
func (s *Service) Refresh(ctx context.Context, userID id.UserID, token string) error {
	var (
		perms    []string
		accounts []account.AccountSummary
		profile  *account.Profile
		errs     [3]error
	)

	var g errgroup.Group
	g.Go(func() error {
		perms, errs[0] = s.source.Permissions(ctx, token)
		return nil
	})
	g.Go(func() error {
		accounts, errs[1] = s.source.Accounts(ctx, token)
		return nil
	})
	g.Go(func() error {
		profile, errs[2] = s.source.Profile(ctx, token)
		return nil
	})
	_ = g.Wait()

	_, err := s.store.Update(ctx, userID, func(st *State) {
		now := s.now()
		if errs[0] == nil {
			st.Permissions = perms
		}
		if errs[1] == nil {
			st.Accounts = make([]Account, 0, len(accounts))
			for _, a := range accounts {
				st.Accounts = append(st.Accounts, Account{ID: a.ID, Type: a.Type, Status: a.Status})
			}
		}
		if errs[2] == nil && profile != nil {
			st.DisplayName = profile.DisplayName
			if profile.ActiveAccountID != "" {
				st.ActiveAccountID = profile.ActiveAccountID
			}
		}
		if errs[0] == nil && errs[1] == nil && errs[2] == nil {
			st.RefreshedAt = now
		}
		st.UpdatedAt = now
	})

	joined := errors.Join(
		wrapPart("permissions", errs[0]),
		wrapPart("accounts", errs[1]),
		wrapPart("profile", errs[2]),
		err,
	)
	if joined != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "user state refresh incomplete",
			"user_id", userID.String(),
			"error", joined,
		)
	}
	return joined
}

func wrapPart(part string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("refresh %s: %w", part, err)
}
