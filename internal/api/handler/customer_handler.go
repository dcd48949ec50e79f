package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// CreateProfile handles POST /api/customer/profile
//
// @Summary Create the caller's applicant profile
// @Description Credit score defaults to 300 when omitted and must lie within 300..850.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerProfileRequest true "Financial profile"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid income or credit score"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customer/profile [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateCustomerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.CreateProfile(r.Context(), principal, req.AnnualIncome.InexactFloat64(), req.CreditScore)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to create customer profile", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer profile created", slog.Int64("customerID", cust.CustomerID))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(cust))
}

// GetProfile handles GET /api/customer/profile
//
// @Summary Get the caller's applicant profile
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customer/profile [get]
// @Security BearerAuth
func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.GetProfileByUser(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to get customer profile", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// UpdateProfile handles PUT /api/customer/profile
//
// @Summary Update income or credit score
// @Description Omitted fields keep their current value.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.UpdateCustomerProfileRequest true "Fields to change"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid income or credit score"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customer/profile [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateCustomerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.UpdateProfile(r.Context(), principal.UserID, req.Income(), req.CreditScore)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to update customer profile", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer profile updated", slog.Int64("customerID", cust.CustomerID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// GetCustomer handles GET /api/customer/{customerID}
//
// @Summary Retrieve an applicant profile by ID
// @Tags Customers
// @Produce json
// @Param customerID path int true "Applicant profile ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customer/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}
