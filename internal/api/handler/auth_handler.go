package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

type AuthHandler struct {
	cfg    config.AuthConfig
	logger *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a signed token for a user id and role.
//
// @Summary Generate a JWT bearer token
// @Description Issues a bearer token carrying the caller's user id and role (CUSTOMER or OFFICER).
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Identity to embed in the token"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode token request", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if req.UserID <= 0 {
		respondError(w, apperrors.NewValidationError("userId", "userId must be a positive number"))
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		respondError(w, apperrors.NewValidationError("role", "role must be CUSTOMER or OFFICER"))
		return
	}

	token, expiresAt, err := middleware.IssueToken(h.cfg.JWTSecret, identity.Principal{UserID: req.UserID, Role: role}, h.cfg.TokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInternalServer, err))
		return
	}

	h.logger.InfoContext(r.Context(), "Issued bearer token", "userID", req.UserID, "role", role)
	respondJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     "Bearer " + token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
