package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// ApplyForLoan handles POST /api/loans/apply
//
// @Summary Apply for a loan
// @Description Submits an application against the caller's applicant profile. The application is scored immediately and returned with its decision and monthly instalment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.ApplyLoanRequest true "Loan application"
// @Success 201 {object} dto.LoanApplicationResponse "Application submitted and evaluated"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or tenure"
// @Failure 403 {object} dto.ErrorResponse "Profile does not belong to the caller"
// @Failure 404 {object} dto.ErrorResponse "Applicant profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/apply [post]
// @Security BearerAuth
func (h *LoanHandler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.ApplyLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	view, err := h.service.SubmitApplication(r.Context(), principal, req.ToInput())
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to submit application", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan application submitted", slog.Int64("loanID", view.ID), slog.String("status", string(view.Status)))
	respondJSON(w, http.StatusCreated, dto.NewLoanApplicationResponse(view))
}

// GetLoanStatus handles GET /api/loans/{loanID}/status
//
// @Summary Get application status
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan application ID" Minimum(1)
// @Success 200 {object} dto.LoanApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID}/status [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.service.GetApplication(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to get application", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponse(view))
}

// ListCustomerLoans handles GET /api/loans/customer/{customerID}
//
// @Summary List a profile's applications
// @Description Newest first.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Applicant profile ID" Minimum(1)
// @Success 200 {array} dto.LoanApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/customer/{customerID} [get]
// @Security BearerAuth
func (h *LoanHandler) ListCustomerLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}

	views, err := h.service.ListCustomerApplications(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to list customer applications", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponses(views))
}

// ListLoans handles GET /api/loans
//
// @Summary List all applications
// @Description Newest first, optionally filtered by status. A status other than PENDING, APPROVED or REJECTED is rejected with 400 instead of returning an empty list.
// @Tags Loans
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED (case-insensitive)"
// @Success 200 {array} dto.LoanApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an officer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var filter *loan.ApplicationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := loan.ApplicationStatus(raw)
		filter = &status
	}
	h.listByStatus(w, r, filter)
}

// ListPendingLoans handles GET /api/officer/loans/pending
//
// @Summary List applications awaiting a decision
// @Tags Officer
// @Produce json
// @Success 200 {array} dto.LoanApplicationResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not an officer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/loans/pending [get]
// @Security BearerAuth
func (h *LoanHandler) ListPendingLoans(w http.ResponseWriter, r *http.Request) {
	pending := loan.StatusPending
	h.listByStatus(w, r, &pending)
}

func (h *LoanHandler) listByStatus(w http.ResponseWriter, r *http.Request, filter *loan.ApplicationStatus) {
	views, err := h.service.ListApplications(r.Context(), filter)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to list applications", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponses(views))
}

// EvaluateLoan handles POST /api/loans/{loanID}/evaluate
//
// @Summary Re-run the automated evaluation
// @Description Scores the application again against the applicant's current profile and overwrites the stored decision.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan application ID" Minimum(1)
// @Success 200 {object} dto.LoanApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Application or profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID}/evaluate [post]
// @Security BearerAuth
func (h *LoanHandler) EvaluateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	app, err := h.service.EvaluateApplication(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to evaluate application", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan application re-evaluated", slog.Int64("loanID", loanID), slog.String("status", string(app.Status)))
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponse(loan.NewApplicationView(app)))
}

// ReviewLoan handles POST /api/officer/loans/{loanID}/review
//
// @Summary Review an application
// @Description Approves or rejects an application. A review overwrites any earlier decision.
// @Tags Officer
// @Accept json
// @Produce json
// @Param loanID path int true "Loan application ID" Minimum(1)
// @Param request body dto.ReviewLoanRequest true "Review decision"
// @Success 200 {object} dto.LoanApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid action or loan ID"
// @Failure 404 {object} dto.ErrorResponse "Application or officer profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/loans/{loanID}/review [post]
// @Security BearerAuth
func (h *LoanHandler) ReviewLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.ReviewLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	view, err := h.service.ReviewApplication(r.Context(), principal, loanID, req.ToInput())
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to review application", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan application reviewed", slog.Int64("loanID", loanID), slog.String("action", req.Action))
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponse(view))
}

// MyReviews handles GET /api/officer/loans/my-reviews
//
// @Summary List applications reviewed by the caller
// @Description Most recently updated first.
// @Tags Officer
// @Produce json
// @Success 200 {array} dto.LoanApplicationResponse
// @Failure 404 {object} dto.ErrorResponse "Officer profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/loans/my-reviews [get]
// @Security BearerAuth
func (h *LoanHandler) MyReviews(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	views, err := h.service.ListReviewedBy(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Log(r.Context(), logLevel(err), "Service failed to list reviewed applications", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanApplicationResponses(views))
}

// Statistics handles GET /api/officer/stats
//
// @Summary Aggregate application statistics
// @Tags Officer
// @Produce json
// @Success 200 {object} dto.StatisticsResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/officer/stats [get]
// @Security BearerAuth
func (h *LoanHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to compute statistics", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewStatisticsResponse(stats))
}
