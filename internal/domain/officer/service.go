package officer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

type OfficerService interface {
	CreateProfile(ctx context.Context, principal identity.Principal, branch string) (*Officer, error)
	GetByUserID(ctx context.Context, userID int64) (*Officer, error)
}

type officerService struct {
	repo   OfficerRepository
	logger *slog.Logger
}

func NewOfficerService(repo OfficerRepository, logger *slog.Logger) OfficerService {
	return &officerService{repo: repo, logger: logger.With("component", "officerService")}
}

func (s *officerService) CreateProfile(ctx context.Context, principal identity.Principal, branch string) (*Officer, error) {
	if principal.Role != identity.RoleOfficer {
		return nil, fmt.Errorf("%w: only officers can own an officer profile", apperrors.ErrForbidden)
	}

	o := NewOfficer(principal.UserID, branch)
	if err := s.repo.Save(ctx, o); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Officer profile already exists", "userID", principal.UserID)
			return nil, ErrProfileExists
		}
		s.logger.ErrorContext(ctx, "Failed to save officer profile", "userID", principal.UserID, "error", err)
		return nil, fmt.Errorf("failed to save officer profile: %w", err)
	}

	s.logger.InfoContext(ctx, "Officer profile created", "officerID", o.OfficerID, "branch", o.Branch)
	return o, nil
}

func (s *officerService) GetByUserID(ctx context.Context, userID int64) (*Officer, error) {
	o, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w (userID: %d)", ErrNotFound, userID)
		}
		s.logger.ErrorContext(ctx, "Failed to get officer profile", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to get officer profile for user %d: %w", userID, err)
	}
	return o, nil
}
