package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerColumns = []string{"id", "user_id", "annual_income", "credit_score", "created_at", "updated_at"}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	return context.Background(), NewCustomerRepository(mockPool, logger), mockPool
}

func TestSaveCustomer(t *testing.T) {
	t.Run("should insert a new profile", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		now := time.Now()
		cust := &customer.Customer{UserID: 42, AnnualIncome: 800_000, CreditScore: 780}
		mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).
			WithArgs(int64(42), 800_000.0, 780).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

		require.NoError(t, repo.Save(ctx, cust))
		assert.Equal(t, int64(7), cust.CustomerID)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("should report duplicates as already exists", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		cust := &customer.Customer{UserID: 42, CreditScore: 300}
		mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).
			WithArgs(int64(42), 0.0, 300).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_user_id_key"})

		err := repo.Save(ctx, cust)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("should reject nil", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		assert.ErrorIs(t, repo.Save(ctx, nil), apperrors.ErrInvalidArgument)
	})
}

func TestFindCustomer(t *testing.T) {
	t.Run("should find by ID", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		now := time.Now()
		mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByIDQuery)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(customerColumns).AddRow(int64(7), int64(42), 800_000.0, 780, now, now))

		cust, err := repo.FindByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(42), cust.UserID)
		assert.Equal(t, 780, cust.CreditScore)
	})

	t.Run("should find by user", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		now := time.Now()
		mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByUserIDQuery)).
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(customerColumns).AddRow(int64(7), int64(42), 800_000.0, 780, now, now))

		cust, err := repo.FindByUserID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(7), cust.CustomerID)
	})

	t.Run("should return not found", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByIDQuery)).WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, 8)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("should wrap database errors", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(findCustomerByUserIDQuery)).WithArgs(int64(8)).WillReturnError(errors.New("broken pipe"))

		_, err := repo.FindByUserID(ctx, 8)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestUpdateCustomerFinancials(t *testing.T) {
	t.Run("should update income and score", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		updated := time.Now()
		cust := &customer.Customer{CustomerID: 7, UserID: 42, AnnualIncome: 900_000, CreditScore: 800}
		mockPool.ExpectQuery(regexp.QuoteMeta(updateCustomerFinancialsQuery)).
			WithArgs(900_000.0, 800, int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))

		require.NoError(t, repo.UpdateFinancials(ctx, cust))
		assert.Equal(t, updated, cust.UpdatedAt)
	})

	t.Run("should return not found when no row matched", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		cust := &customer.Customer{CustomerID: 70, AnnualIncome: 1, CreditScore: 300}
		mockPool.ExpectQuery(regexp.QuoteMeta(updateCustomerFinancialsQuery)).
			WithArgs(1.0, 300, int64(70)).
			WillReturnError(pgx.ErrNoRows)

		assert.ErrorIs(t, repo.UpdateFinancials(ctx, cust), apperrors.ErrNotFound)
	})
}
