//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/store/ledger"
	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
	"kycportal/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *ledger.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = ledger.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "onboarding_submissions"))
}

func record(status models.SubmissionStatus, accountID string, at time.Time) *models.SubmissionRecord {
	return &models.SubmissionRecord{
		ID:        id.NewSubmissionID(),
		SessionID: id.NewSessionID(),
		UserID:    id.UserID(uuid.New()),
		Branch:    models.BranchNonIndividualInvestor,
		Status:    status,
		AccountID: accountID,
		Attempts:  1,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func (s *PostgresStoreSuite) TestUpsertKeepsIdentity() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := record(models.SubmissionPending, "", now)
	s.Require().NoError(s.store.Save(ctx, rec))

	retry := *rec
	retry.ID = id.NewSubmissionID()
	retry.Status = models.SubmissionFailed
	retry.AccountID = "acc-9"
	retry.FailedStep = models.StepCompleteKYC
	retry.LastError = "kyc rejected"
	retry.Attempts = 2
	retry.UpdatedAt = now.Add(time.Minute)
	s.Require().NoError(s.store.Save(ctx, &retry))

	got, err := s.store.FindBySession(ctx, rec.SessionID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(models.SubmissionFailed, got.Status)
	s.Equal(models.StepCompleteKYC, got.FailedStep)
	s.Equal(2, got.Attempts)
	s.True(got.IsPartial())
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindBySession(context.Background(), id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.Save(ctx, record(models.SubmissionKYCCompleted, "acc-1", now)))
	s.Require().NoError(s.store.Save(ctx, record(models.SubmissionFailed, "acc-2", now.Add(time.Second))))
	s.Require().NoError(s.store.Save(ctx, record(models.SubmissionFailed, "", now.Add(2*time.Second))))

	partial, err := s.store.List(ctx, ledger.Filter{PartialOnly: true})
	s.Require().NoError(err)
	s.Require().Len(partial, 1)
	s.Equal("acc-2", partial[0].AccountID)

	failed, err := s.store.List(ctx, ledger.Filter{Statuses: []models.SubmissionStatus{models.SubmissionFailed, models.SubmissionPending}})
	s.Require().NoError(err)
	s.Len(failed, 2)
	s.Empty(failed[0].AccountID, "newest first")

	limited, err := s.store.List(ctx, ledger.Filter{Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)
}
