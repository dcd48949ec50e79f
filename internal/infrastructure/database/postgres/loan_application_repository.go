package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	insertApplicationQuery = `
        INSERT INTO loan_applications (customer_id, amount_requested, tenure_months, interest_rate, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	selectApplicationColumns = `
        SELECT id, customer_id, officer_id, amount_requested, tenure_months, interest_rate,
               status, eligibility_score, rejection_reason, created_at, updated_at
        FROM loan_applications`

	getApplicationByIDQuery       = selectApplicationColumns + ` WHERE id = $1`
	listApplicationsQuery         = selectApplicationColumns + ` ORDER BY created_at DESC, id DESC`
	listApplicationsByStatus      = selectApplicationColumns + ` WHERE status = $1 ORDER BY created_at DESC, id DESC`
	listApplicationsByCustomer    = selectApplicationColumns + ` WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`
	listApplicationsByOfficer     = selectApplicationColumns + ` WHERE officer_id = $1 ORDER BY updated_at DESC, id DESC`
	listPendingCreatedBeforeQuery = selectApplicationColumns + ` WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC LIMIT $3`

	updateEvaluationQuery = `
        UPDATE loan_applications
        SET eligibility_score = $1,
            status = $2,
            interest_rate = $3,
            rejection_reason = $4,
            updated_at = NOW()
        WHERE id = $5
        RETURNING updated_at`

	updatePendingEvaluationQuery = `
        UPDATE loan_applications
        SET eligibility_score = $1,
            status = $2,
            interest_rate = $3,
            rejection_reason = $4,
            updated_at = NOW()
        WHERE id = $5 AND status = 'PENDING'
        RETURNING updated_at`

	updateReviewQuery = `
        UPDATE loan_applications
        SET status = $1,
            officer_id = $2,
            rejection_reason = $3,
            updated_at = NOW()
        WHERE id = $4
        RETURNING updated_at`

	applicationStatisticsQuery = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'PENDING'),
               COUNT(*) FILTER (WHERE status = 'APPROVED'),
               COUNT(*) FILTER (WHERE status = 'REJECTED'),
               COALESCE(SUM(amount_requested) FILTER (WHERE status = 'APPROVED'), 0)
        FROM loan_applications`
)

type LoanApplicationRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanApplicationRepository)(nil)

func NewLoanApplicationRepository(db DBPool, logger *slog.Logger) *LoanApplicationRepository {
	return &LoanApplicationRepository{db: db, logger: logger.With("component", "LoanApplicationRepository")}
}

func (r *LoanApplicationRepository) Create(ctx context.Context, app *loan.LoanApplication) (err error) {
	defer func(start time.Time) { observe("InsertApplication", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, insertApplicationQuery,
		app.CustomerID,
		app.AmountRequested,
		app.TenureMonths,
		app.InterestRate,
		string(app.Status),
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan application", "customer_id", app.CustomerID, "error", err)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan application inserted", "loan_id", app.ID)
	return nil
}

func (r *LoanApplicationRepository) GetByID(ctx context.Context, id int64) (app *loan.LoanApplication, err error) {
	defer func(start time.Time) { observe("GetApplicationByID", start, err) }(time.Now())

	app, err = scanApplication(r.db.QueryRow(ctx, getApplicationByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan application not found", "loan_id", id)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan application by ID", "loan_id", id, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to get loan application")
	}
	return app, nil
}

func (r *LoanApplicationRepository) UpdateEvaluation(ctx context.Context, app *loan.LoanApplication) (err error) {
	defer func(start time.Time) { observe("UpdateEvaluation", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, updateEvaluationQuery,
		app.EligibilityScore,
		string(app.Status),
		app.InterestRate,
		app.RejectionReason,
		app.ID,
	).Scan(&app.UpdatedAt)
	return r.updateResult(ctx, "evaluation", app.ID, err)
}

func (r *LoanApplicationRepository) UpdateEvaluationIfPending(ctx context.Context, app *loan.LoanApplication) (err error) {
	defer func(start time.Time) { observe("UpdatePendingEvaluation", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, updatePendingEvaluationQuery,
		app.EligibilityScore,
		string(app.Status),
		app.InterestRate,
		app.RejectionReason,
		app.ID,
	).Scan(&app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.WarnContext(ctx, "Application missing or no longer pending, evaluation not written", "loan_id", app.ID)
		return fmt.Errorf("%w: loan application %d is not pending", apperrors.ErrConflict, app.ID)
	}
	return r.updateResult(ctx, "pending evaluation", app.ID, err)
}

func (r *LoanApplicationRepository) UpdateReview(ctx context.Context, app *loan.LoanApplication) (err error) {
	defer func(start time.Time) { observe("UpdateReview", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, updateReviewQuery,
		string(app.Status),
		app.OfficerID,
		app.RejectionReason,
		app.ID,
	).Scan(&app.UpdatedAt)
	return r.updateResult(ctx, "review", app.ID, err)
}

func (r *LoanApplicationRepository) updateResult(ctx context.Context, kind string, id int64, err error) error {
	if err == nil {
		r.logger.InfoContext(ctx, "Loan application updated", "kind", kind, "loan_id", id)
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.WarnContext(ctx, "Update affected zero rows, application likely not found", "kind", kind, "loan_id", id)
		return apperrors.ErrNotFound
	}
	r.logger.ErrorContext(ctx, "Failed to update loan application", "kind", kind, "loan_id", id, "error", err)
	return translateDBError(err, r.logger)
}

func (r *LoanApplicationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*loan.LoanApplication, error) {
	return r.list(ctx, "ListApplicationsByCustomer", listApplicationsByCustomer, customerID)
}

func (r *LoanApplicationRepository) List(ctx context.Context, status *loan.ApplicationStatus) ([]*loan.LoanApplication, error) {
	if status == nil {
		return r.list(ctx, "ListApplications", listApplicationsQuery)
	}
	return r.list(ctx, "ListApplicationsByStatus", listApplicationsByStatus, string(*status))
}

func (r *LoanApplicationRepository) ListByOfficer(ctx context.Context, officerID int64) ([]*loan.LoanApplication, error) {
	return r.list(ctx, "ListApplicationsByOfficer", listApplicationsByOfficer, officerID)
}

func (r *LoanApplicationRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*loan.LoanApplication, error) {
	return r.list(ctx, "ListPendingCreatedBefore", listPendingCreatedBeforeQuery, string(loan.StatusPending), cutoff, limit)
}

func (r *LoanApplicationRepository) list(ctx context.Context, queryName, query string, args ...any) (apps []*loan.LoanApplication, err error) {
	defer func(start time.Time) { observe(queryName, start, err) }(time.Now())
	logCtx := r.logger.With(slog.String("operation", queryName))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query loan applications", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query loan applications")
	}
	defer rows.Close()

	apps = make([]*loan.LoanApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan loan application row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan loan application row")
		}
		apps = append(apps, app)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating loan application rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating loan application rows")
	}

	logCtx.DebugContext(ctx, "Finished listing loan applications", slog.Int("count", len(apps)))
	return apps, nil
}

func (r *LoanApplicationRepository) GetStatistics(ctx context.Context) (stats *loan.Statistics, err error) {
	defer func(start time.Time) { observe("GetApplicationStatistics", start, err) }(time.Now())

	var s loan.Statistics
	err = r.db.QueryRow(ctx, applicationStatisticsQuery).Scan(
		&s.Total, &s.Pending, &s.Approved, &s.Rejected, &s.TotalApprovedAmount,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to compute application statistics", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to compute application statistics")
	}
	return &s, nil
}

func scanApplication(row pgx.Row) (*loan.LoanApplication, error) {
	var (
		app    loan.LoanApplication
		status string
	)
	err := row.Scan(
		&app.ID,
		&app.CustomerID,
		&app.OfficerID,
		&app.AmountRequested,
		&app.TenureMonths,
		&app.InterestRate,
		&status,
		&app.EligibilityScore,
		&app.RejectionReason,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = loan.ApplicationStatus(status)
	return &app, nil
}
