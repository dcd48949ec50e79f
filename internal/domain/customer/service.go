package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

type CustomerService interface {
	CreateProfile(ctx context.Context, principal identity.Principal, annualIncome float64, creditScore int) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	GetProfileByUser(ctx context.Context, userID int64) (*Customer, error)
	UpdateProfile(ctx context.Context, ownerUserID int64, annualIncome *float64, creditScore *int) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateProfile(ctx context.Context, principal identity.Principal, annualIncome float64, creditScore int) (*Customer, error) {
	logger := s.logger.With(slog.Int64("userID", principal.UserID))
	logger.InfoContext(ctx, "Attempting to create customer profile")

	if principal.Role != identity.RoleCustomer {
		logger.WarnContext(ctx, "Non-customer identity tried to create a customer profile", slog.String("role", string(principal.Role)))
		return nil, fmt.Errorf("%w: only customers can own an applicant profile", apperrors.ErrForbidden)
	}

	cust, err := NewCustomer(principal.UserID, annualIncome, creditScore)
	if err != nil {
		logger.WarnContext(ctx, "Validation failed for new customer profile", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Customer profile already exists")
			return nil, ErrProfileExists
		}
		logger.ErrorContext(ctx, "Repository failed to save customer profile", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer profile: %w", err)
	}

	logger.InfoContext(ctx, "Customer profile created", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(ctx, "Getting customer profile by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer profile not found")
			return nil, fmt.Errorf("%w (ID: %d)", ErrNotFound, customerID)
		}
		logger.ErrorContext(ctx, "Failed to get customer profile", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) GetProfileByUser(ctx context.Context, userID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("userID", userID))
	logger.DebugContext(ctx, "Getting customer profile by user")

	cust, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer profile not found for user")
			return nil, fmt.Errorf("%w (userID: %d)", ErrNotFound, userID)
		}
		logger.ErrorContext(ctx, "Failed to get customer profile for user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer profile for user %d: %w", userID, err)
	}
	return cust, nil
}

func (s *customerService) UpdateProfile(ctx context.Context, ownerUserID int64, annualIncome *float64, creditScore *int) (*Customer, error) {
	logger := s.logger.With(slog.Int64("userID", ownerUserID))
	logger.InfoContext(ctx, "Attempting to update customer profile")

	cust, err := s.GetProfileByUser(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	if err := cust.UpdateFinancials(annualIncome, creditScore); err != nil {
		logger.WarnContext(ctx, "Validation failed for customer profile update", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.UpdateFinancials(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w (ID: %d)", ErrNotFound, cust.CustomerID)
		}
		logger.ErrorContext(ctx, "Repository failed to update customer profile", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer profile: %w", err)
	}

	logger.InfoContext(ctx, "Customer profile updated", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}
