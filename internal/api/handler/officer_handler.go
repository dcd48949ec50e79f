package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/officer"
	"loan-origination/internal/pkg/apperrors"
)

type OfficerHandler struct {
	service officer.OfficerService
	logger  *slog.Logger
}

func NewOfficerHandler(s officer.OfficerService, l *slog.Logger) *OfficerHandler {
	if s == nil {
		panic("officer service cannot be nil")
	}
	return &OfficerHandler{
		service: s,
		logger:  l.With("component", "OfficerHandler"),
	}
}

// CreateProfile handles POST /api/officer/profile
//
// @Summary Create the caller's officer profile
// @Description Branch defaults to "Main Branch".
// @Tags Officer
// @Accept json
// @Produce json
// @Param request body dto.CreateOfficerProfileRequest false "Officer profile"
// @Success 201 {object} dto.OfficerResponse
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/profile [post]
// @Security BearerAuth
func (h *OfficerHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateOfficerProfileRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
			respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
			return
		}
	}

	o, err := h.service.CreateProfile(r.Context(), principal, req.Branch)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to create officer profile", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewOfficerResponse(o))
}

// GetProfile handles GET /api/officer/profile
//
// @Summary Get the caller's officer profile
// @Tags Officer
// @Produce json
// @Success 200 {object} dto.OfficerResponse
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/profile [get]
// @Security BearerAuth
func (h *OfficerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	o, err := h.service.GetByUserID(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to get officer profile", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewOfficerResponse(o))
}
