package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kycportal/internal/onboarding/models"
	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore persists ledger rows in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the ledger table when it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate submission ledger: %w", err)
	}
	return nil
}

const selectColumns = `id, session_id, user_id, branch, status, account_id, failed_step, last_error, attempts, created_at, updated_at`

func (s *PostgresStore) FindBySession(ctx context.Context, sessionID id.SessionID) (*models.SubmissionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM onboarding_submissions WHERE session_id = $1`,
		uuid.UUID(sessionID))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission by session: %w", err)
	}
	return rec, nil
}

// Save upserts on session_id. The first row's id and created_at are kept.
func (s *PostgresStore) Save(ctx context.Context, rec *models.SubmissionRecord) error {
	query := `
		INSERT INTO onboarding_submissions
			(id, session_id, user_id, branch, status, account_id, failed_step, last_error, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO UPDATE SET
			status      = EXCLUDED.status,
			account_id  = EXCLUDED.account_id,
			failed_step = EXCLUDED.failed_step,
			last_error  = EXCLUDED.last_error,
			attempts    = EXCLUDED.attempts,
			updated_at  = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID),
		uuid.UUID(rec.SessionID),
		uuid.UUID(rec.UserID),
		string(rec.Branch),
		string(rec.Status),
		rec.AccountID,
		string(rec.FailedStep),
		rec.LastError,
		rec.Attempts,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

// List filters by status with a single array parameter.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*models.SubmissionRecord, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.PartialOnly {
		args = append(args, string(models.SubmissionKYCCompleted))
		where = append(where, fmt.Sprintf("account_id <> '' AND status <> $%d", len(args)))
	}
	query := `SELECT ` + selectColumns + ` FROM onboarding_submissions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.limit())
	query += fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SubmissionRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.SubmissionRecord, error) {
	var (
		rec                                 models.SubmissionRecord
		recID, sessionID, userID            uuid.UUID
		branch, status, failedStep, lastErr string
	)
	if err := row.Scan(&recID, &sessionID, &userID, &branch, &status, &rec.AccountID,
		&failedStep, &lastErr, &rec.Attempts, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.ID = id.SubmissionID(recID)
	rec.SessionID = id.SessionID(sessionID)
	rec.UserID = id.UserID(userID)
	rec.Branch = models.Branch(branch)
	rec.Status = models.SubmissionStatus(status)
	rec.FailedStep = models.Step(failedStep)
	rec.LastError = lastErr
	return &rec, nil
}
