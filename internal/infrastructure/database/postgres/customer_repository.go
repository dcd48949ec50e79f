package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	insertCustomerQuery = `
        INSERT INTO customers (user_id, annual_income, credit_score, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	selectCustomerColumns = `
        SELECT id, user_id, annual_income, credit_score, created_at, updated_at
        FROM customers`

	findCustomerByIDQuery     = selectCustomerColumns + ` WHERE id = $1`
	findCustomerByUserIDQuery = selectCustomerColumns + ` WHERE user_id = $1`

	updateCustomerFinancialsQuery = `
        UPDATE customers
        SET annual_income = $1,
            credit_score = $2,
            updated_at = NOW()
        WHERE id = $3
        RETURNING updated_at`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer func(start time.Time) { observe("InsertCustomer", start, err) }(time.Now())

	r.logger.InfoContext(ctx, "Attempting to insert customer profile", slog.Int64("userID", cust.UserID))

	err = r.db.QueryRow(ctx, insertCustomerQuery,
		cust.UserID,
		cust.AnnualIncome,
		cust.CreditScore,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Customer profile already exists", slog.Int64("userID", cust.UserID))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer profile", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to insert customer")
	}

	r.logger.InfoContext(ctx, "Customer profile inserted", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return r.findOne(ctx, "FindCustomerByID", findCustomerByIDQuery, customerID)
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID int64) (*customer.Customer, error) {
	return r.findOne(ctx, "FindCustomerByUserID", findCustomerByUserIDQuery, userID)
}

func (r *CustomerRepository) findOne(ctx context.Context, queryName, query string, arg int64) (cust *customer.Customer, err error) {
	defer func(start time.Time) { observe(queryName, start, err) }(time.Now())

	var c customer.Customer
	err = r.db.QueryRow(ctx, query, arg).Scan(
		&c.CustomerID,
		&c.UserID,
		&c.AnnualIncome,
		&c.CreditScore,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.String("query", queryName), slog.Int64("arg", arg))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer", slog.String("query", queryName), slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer")
	}
	return &c, nil
}

func (r *CustomerRepository) UpdateFinancials(ctx context.Context, cust *customer.Customer) (err error) {
	defer func(start time.Time) { observe("UpdateCustomerFinancials", start, err) }(time.Now())

	err = r.db.QueryRow(ctx, updateCustomerFinancialsQuery,
		cust.AnnualIncome,
		cust.CreditScore,
		cust.CustomerID,
	).Scan(&cust.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found", slog.Int64("customerID", cust.CustomerID))
			return apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to update customer")
	}

	r.logger.InfoContext(ctx, "Customer financials updated", slog.Int64("customerID", cust.CustomerID))
	return nil
}
