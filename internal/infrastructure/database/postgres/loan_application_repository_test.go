package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations not met"

var applicationColumns = []string{
	"id", "customer_id", "officer_id", "amount_requested", "tenure_months", "interest_rate",
	"status", "eligibility_score", "rejection_reason", "created_at", "updated_at",
}

func setupLoanApplicationRepo(t *testing.T) (context.Context, *LoanApplicationRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewLoanApplicationRepository(mockPool, logger), mockPool
}

func TestCreateApplication(t *testing.T) {
	t.Run("should insert and fill generated fields", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		now := time.Now()
		app, err := loan.NewLoanApplication(4, 500_000, 60, 0)
		require.NoError(t, err)

		mockPool.ExpectQuery(regexp.QuoteMeta(insertApplicationQuery)).
			WithArgs(int64(4), 500_000.0, 60, loan.DefaultInterestRate, "PENDING").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(21), now, now))

		require.NoError(t, repo.Create(ctx, app))
		assert.Equal(t, int64(21), app.ID)
		assert.Equal(t, now, app.CreatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should translate foreign key failures to database errors", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		app, _ := loan.NewLoanApplication(999, 5_000, 12, 0)
		mockPool.ExpectQuery(regexp.QuoteMeta(insertApplicationQuery)).
			WithArgs(int64(999), 5_000.0, 12, loan.DefaultInterestRate, "PENDING").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "loan_applications_customer_id_fkey"})

		err := repo.Create(ctx, app)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestGetApplicationByID(t *testing.T) {
	t.Run("should scan nullable columns", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		now := time.Now()
		officerID := int64(3)
		score := 0.19
		reason := loan.ReasonLowCreditScore
		mockPool.ExpectQuery(regexp.QuoteMeta(getApplicationByIDQuery)).
			WithArgs(int64(21)).
			WillReturnRows(pgxmock.NewRows(applicationColumns).
				AddRow(int64(21), int64(4), &officerID, 600_000.0, 36, 8.5, "REJECTED", &score, &reason, now, now))

		app, err := repo.GetByID(ctx, 21)
		require.NoError(t, err)
		assert.Equal(t, loan.StatusRejected, app.Status)
		require.NotNil(t, app.OfficerID)
		assert.Equal(t, int64(3), *app.OfficerID)
		require.NotNil(t, app.EligibilityScore)
		assert.Equal(t, 0.19, *app.EligibilityScore)
		require.NotNil(t, app.RejectionReason)
		assert.Equal(t, reason, *app.RejectionReason)
		assert.Equal(t, 36, app.TenureMonths)
	})

	t.Run("should leave unset columns nil", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		now := time.Now()
		mockPool.ExpectQuery(regexp.QuoteMeta(getApplicationByIDQuery)).
			WithArgs(int64(22)).
			WillReturnRows(pgxmock.NewRows(applicationColumns).
				AddRow(int64(22), int64(4), nil, 5_000.0, 12, 8.5, "PENDING", nil, nil, now, now))

		app, err := repo.GetByID(ctx, 22)
		require.NoError(t, err)
		assert.Equal(t, loan.StatusPending, app.Status)
		assert.Nil(t, app.OfficerID)
		assert.Nil(t, app.EligibilityScore)
		assert.Nil(t, app.RejectionReason)
	})

	t.Run("should return not found", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(getApplicationByIDQuery)).
			WithArgs(int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("should wrap other failures", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(getApplicationByIDQuery)).
			WithArgs(int64(1)).
			WillReturnError(errors.New("conn busy"))

		_, err := repo.GetByID(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestUpdateEvaluation(t *testing.T) {
	t.Run("should write every evaluation field in one statement", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		app, _ := loan.NewLoanApplication(4, 500_000, 60, 0)
		app.ID = 21
		app.ApplyEvaluation(loan.DefaultPolicy().Score(780, 800_000, 500_000))
		updated := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(updateEvaluationQuery)).
			WithArgs(app.EligibilityScore, "APPROVED", app.InterestRate, (*string)(nil), int64(21)).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))

		require.NoError(t, repo.UpdateEvaluation(ctx, app))
		assert.Equal(t, updated, app.UpdatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should report a missing row", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		app, _ := loan.NewLoanApplication(4, 600_000, 36, 0)
		app.ID = 404
		app.ApplyEvaluation(loan.DefaultPolicy().Score(480, 180_000, 600_000))

		mockPool.ExpectQuery(regexp.QuoteMeta(updateEvaluationQuery)).
			WithArgs(app.EligibilityScore, "REJECTED", loan.DefaultInterestRate, app.RejectionReason, int64(404)).
			WillReturnError(pgx.ErrNoRows)

		err := repo.UpdateEvaluation(ctx, app)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUpdateEvaluationIfPending(t *testing.T) {
	t.Run("should write when the row is still pending", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		app, _ := loan.NewLoanApplication(4, 500_000, 60, 0)
		app.ID = 21
		app.ApplyEvaluation(loan.DefaultPolicy().Score(780, 800_000, 500_000))
		updated := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(updatePendingEvaluationQuery)).
			WithArgs(app.EligibilityScore, "APPROVED", app.InterestRate, (*string)(nil), int64(21)).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))

		require.NoError(t, repo.UpdateEvaluationIfPending(ctx, app))
		assert.Equal(t, updated, app.UpdatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should report a conflict once the row has been reviewed", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		app, _ := loan.NewLoanApplication(4, 600_000, 36, 0)
		app.ID = 22
		app.ApplyEvaluation(loan.DefaultPolicy().Score(480, 180_000, 600_000))

		mockPool.ExpectQuery(regexp.QuoteMeta(updatePendingEvaluationQuery)).
			WithArgs(app.EligibilityScore, "REJECTED", loan.DefaultInterestRate, app.RejectionReason, int64(22)).
			WillReturnError(pgx.ErrNoRows)

		err := repo.UpdateEvaluationIfPending(ctx, app)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should guard on the pending status in SQL", func(t *testing.T) {
		assert.Contains(t, updatePendingEvaluationQuery, "AND status = 'PENDING'")
	})
}

func TestUpdateReview(t *testing.T) {
	ctx, repo, mockPool := setupLoanApplicationRepo(t)
	defer mockPool.Close()

	app := &loan.LoanApplication{ID: 21, Status: loan.StatusPending}
	app.ApplyReview(3, loan.ActionReject, "")
	officerID := int64(3)
	reason := loan.DefaultOfficerRejection

	mockPool.ExpectQuery(regexp.QuoteMeta(updateReviewQuery)).
		WithArgs("REJECTED", &officerID, &reason, int64(21)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	require.NoError(t, repo.UpdateReview(ctx, app))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestListApplications(t *testing.T) {
	now := time.Now()
	rows := func() *pgxmock.Rows {
		return pgxmock.NewRows(applicationColumns).
			AddRow(int64(2), int64(4), nil, 5_000.0, 12, 8.5, "PENDING", nil, nil, now, now).
			AddRow(int64(1), int64(4), nil, 9_000.0, 24, 8.5, "PENDING", nil, nil, now.Add(-time.Hour), now.Add(-time.Hour))
	}

	t.Run("should list all applications", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(listApplicationsQuery)).WillReturnRows(rows())

		apps, err := repo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, int64(2), apps[0].ID)
	})

	t.Run("should filter by status", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		status := loan.StatusPending
		mockPool.ExpectQuery(regexp.QuoteMeta(listApplicationsByStatus)).WithArgs("PENDING").WillReturnRows(rows())

		apps, err := repo.List(ctx, &status)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should list by customer", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(listApplicationsByCustomer)).WithArgs(int64(4)).WillReturnRows(rows())

		apps, err := repo.ListByCustomer(ctx, 4)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
	})

	t.Run("should return an empty slice for an officer without reviews", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(listApplicationsByOfficer)).WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows(applicationColumns))

		apps, err := repo.ListByOfficer(ctx, 3)
		require.NoError(t, err)
		assert.NotNil(t, apps)
		assert.Empty(t, apps)
	})

	t.Run("should list stale pending applications", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		cutoff := now.Add(-5 * time.Minute)
		mockPool.ExpectQuery(regexp.QuoteMeta(listPendingCreatedBeforeQuery)).
			WithArgs("PENDING", cutoff, 100).
			WillReturnRows(rows())

		apps, err := repo.ListPendingCreatedBefore(ctx, cutoff, 100)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
	})

	t.Run("should wrap query failures", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(listApplicationsQuery)).WillReturnError(errors.New("timeout"))

		_, err := repo.List(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestGetStatistics(t *testing.T) {
	t.Run("should scan the aggregate row", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(applicationStatisticsQuery)).
			WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "approved", "rejected", "approved_amount"}).
				AddRow(int64(6), int64(1), int64(3), int64(2), 1_250_000.0))

		stats, err := repo.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, &loan.Statistics{Total: 6, Pending: 1, Approved: 3, Rejected: 2, TotalApprovedAmount: 1_250_000}, stats)
	})

	t.Run("should wrap failures", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanApplicationRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(applicationStatisticsQuery)).WillReturnError(errors.New("boom"))

		_, err := repo.GetStatistics(ctx)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DB_ERROR", appErr.Code)
	})
}

func TestTranslateDBError(t *testing.T) {
	assert.NoError(t, translateDBError(nil, logger))
	assert.ErrorIs(t, translateDBError(pgx.ErrNoRows, logger), apperrors.ErrNotFound)
	assert.ErrorIs(t, translateDBError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_user_id_key"}, logger), apperrors.ErrAlreadyExists)
	assert.ErrorIs(t, translateDBError(&pgconn.PgError{Code: "40001"}, logger), apperrors.ErrDatabase)
	assert.ErrorIs(t, translateDBError(errors.New("eof"), logger), apperrors.ErrDatabase)

	cause := errors.New("eof")
	err := translateDBError(cause, logger)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.ErrorIs(t, err, cause)

	require.ErrorAs(t, translateDBError(&pgconn.PgError{Code: "40001"}, logger), &appErr)
	assert.Equal(t, "database error code 40001", appErr.Message)
}
