package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loan-origination/internal/domain/officer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	insertOfficerQuery = `
        INSERT INTO loan_officers (user_id, branch, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	findOfficerByUserIDQuery = `
        SELECT id, user_id, branch, created_at, updated_at
        FROM loan_officers
        WHERE user_id = $1`
)

type OfficerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ officer.OfficerRepository = (*OfficerRepository)(nil)

func NewOfficerRepository(db DBPool, logger *slog.Logger) *OfficerRepository {
	return &OfficerRepository{db: db, logger: logger.With("component", "OfficerRepository")}
}

func (r *OfficerRepository) Save(ctx context.Context, o *officer.Officer) (err error) {
	defer func(start time.Time) { observe("InsertOfficer", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, insertOfficerQuery, o.UserID, o.Branch).Scan(&o.OfficerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Officer profile inserted", "officerID", o.OfficerID)
	return nil
}

func (r *OfficerRepository) FindByUserID(ctx context.Context, userID int64) (o *officer.Officer, err error) {
	defer func(start time.Time) { observe("FindOfficerByUserID", start, err) }(time.Now())

	var found officer.Officer
	err = r.db.QueryRow(ctx, findOfficerByUserIDQuery, userID).Scan(
		&found.OfficerID, &found.UserID, &found.Branch, &found.CreatedAt, &found.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Officer not found", "userID", userID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get officer by user ID", "userID", userID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to get officer")
	}
	return &found, nil
}
