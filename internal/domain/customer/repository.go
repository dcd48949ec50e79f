package customer

import (
	"context"
	"fmt"

	"loan-origination/internal/pkg/apperrors"
)

var (
	ErrNotFound = fmt.Errorf("%w: customer profile not found", apperrors.ErrNotFound)

	ErrProfileExists = fmt.Errorf("%w: customer profile already exists for this user", apperrors.ErrConflict)
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByUserID(ctx context.Context, userID int64) (*Customer, error)

	UpdateFinancials(ctx context.Context, customer *Customer) error
}
