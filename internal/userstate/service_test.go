package userstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kycportal/internal/onboarding/adapters/account"
	id "kycportal/pkg/domain"
	dErrors "kycportal/pkg/domain-errors"
)

type stubSource struct {
	perms       []string
	accounts    []account.AccountSummary
	profile     *account.Profile
	permsErr    error
	accountsErr error
	profileErr  error
}

func (s *stubSource) Permissions(context.Context, string) ([]string, error) {
	return s.perms, s.permsErr
}

func (s *stubSource) Accounts(context.Context, string) ([]account.AccountSummary, error) {
	return s.accounts, s.accountsErr
}

func (s *stubSource) Profile(context.Context, string) (*account.Profile, error) {
	return s.profile, s.profileErr
}

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	source  *stubSource
	service *Service
	userID  id.UserID
	now     time.Time
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.source = &stubSource{
		perms:    []string{"loans:apply", "profile:read"},
		accounts: []account.AccountSummary{{ID: "acc-1", Type: "borrower", Status: "pending_review"}},
		profile:  &account.Profile{DisplayName: "Maria Santos"},
	}
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.service = New(s.store, s.source, WithClock(func() time.Time { return s.now }))
	s.userID = id.UserID(uuid.New())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestGetUnknownUser() {
	_, err := s.service.Get(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestMarkActive() {
	s.Require().NoError(s.service.MarkActive(s.ctx, s.userID, "acc-1", "borrower"))
	s.Require().NoError(s.service.MarkActive(s.ctx, s.userID, "acc-1", "borrower"))

	st, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal("acc-1", st.ActiveAccountID)
	s.Equal("borrower", st.ActiveAccountType)
	s.Len(st.Accounts, 1)

	s.True(dErrors.HasCode(s.service.MarkActive(s.ctx, s.userID, "", "borrower"), dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestRefresh() {
	s.Require().NoError(s.service.Refresh(s.ctx, s.userID, "tok"))

	st, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.True(st.HasPermission("loans:apply"))
	s.Equal("pending_review", st.Accounts[0].Status)
	s.Equal("Maria Santos", st.DisplayName)
	s.Equal(s.now, st.RefreshedAt)
}

func (s *ServiceSuite) TestRefreshPartialFailure() {
	s.source.accountsErr = errors.New("accounts down")

	err := s.service.Refresh(s.ctx, s.userID, "tok")
	s.Require().Error(err)
	s.Contains(err.Error(), "refresh accounts")

	st, getErr := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(getErr)
	s.True(st.HasPermission("profile:read"), "successful parts are kept")
	s.True(st.RefreshedAt.IsZero())
}

func (s *ServiceSuite) TestGetReturnsCopy() {
	s.Require().NoError(s.service.Refresh(s.ctx, s.userID, "tok"))
	st, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	st.Permissions[0] = "admin"

	again, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.False(again.HasPermission("admin"))
}
