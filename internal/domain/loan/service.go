package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/officer"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

type SubmitApplicationInput struct {
	CustomerID      int64
	AmountRequested Money
	TenureMonths    int
}

type ReviewInput struct {
	Action  ReviewAction
	Comment string
}

type LoanService interface {
	SubmitApplication(ctx context.Context, principal identity.Principal, in SubmitApplicationInput) (*ApplicationView, error)

	EvaluateApplication(ctx context.Context, applicationID int64) (*LoanApplication, error)

	// EvaluatePending scores an application that is still PENDING and only
	// writes the result if it is still PENDING at write time.
	EvaluatePending(ctx context.Context, applicationID int64) (*LoanApplication, error)

	ReviewApplication(ctx context.Context, principal identity.Principal, applicationID int64, in ReviewInput) (*ApplicationView, error)

	GetApplication(ctx context.Context, applicationID int64) (*ApplicationView, error)

	ListCustomerApplications(ctx context.Context, customerID int64) ([]*ApplicationView, error)

	ListApplications(ctx context.Context, statusFilter *ApplicationStatus) ([]*ApplicationView, error)

	ListReviewedBy(ctx context.Context, officerUserID int64) ([]*ApplicationView, error)

	ListStalePending(ctx context.Context, minAge time.Duration, limit int) ([]*LoanApplication, error)

	GetStatistics(ctx context.Context) (*Statistics, error)
}

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	officerService  officer.OfficerService
	publisher       EventPublisher
	policy          Policy
	defaultRate     float64
	logger          *slog.Logger
}

type Option func(*loanServiceImpl)

func WithPolicy(p Policy) Option {
	return func(s *loanServiceImpl) { s.policy = p }
}

// WithDefaultInterestRate sets the rate stored on new applications before evaluation.
func WithDefaultInterestRate(rate float64) Option {
	return func(s *loanServiceImpl) {
		if rate > 0 {
			s.defaultRate = rate
		}
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *loanServiceImpl) { s.publisher = p }
}

func NewLoanService(r Repository, cs customer.CustomerService, ofs officer.OfficerService, logger *slog.Logger, opts ...Option) LoanService {
	s := &loanServiceImpl{
		repo:            r,
		customerService: cs,
		officerService:  ofs,
		policy:          DefaultPolicy(),
		defaultRate:     DefaultInterestRate,
		logger:          logger.With("component", "loanService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *loanServiceImpl) SubmitApplication(ctx context.Context, principal identity.Principal, in SubmitApplicationInput) (*ApplicationView, error) {
	logger := s.logger.With("customerID", in.CustomerID, "userID", principal.UserID)
	logger.InfoContext(ctx, "Submitting loan application", "amountRequested", in.AmountRequested, "tenureMonths", in.TenureMonths)

	if err := ValidateTerms(in.AmountRequested, in.TenureMonths); err != nil {
		logger.WarnContext(ctx, "Loan application failed validation", "error", err)
		return nil, err
	}

	cust, err := s.customerService.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load applicant profile", "error", err)
		return nil, err
	}
	if !cust.OwnedBy(principal) {
		logger.WarnContext(ctx, "Applicant profile is not owned by the caller")
		return nil, fmt.Errorf("%w: customer profile %d does not belong to the caller", apperrors.ErrForbidden, in.CustomerID)
	}

	app, err := NewLoanApplication(cust.CustomerID, in.AmountRequested, in.TenureMonths, s.defaultRate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		logger.ErrorContext(ctx, "Failed to save loan application", "error", err)
		return nil, fmt.Errorf("%w: failed to save loan application: %w", apperrors.ErrInternalServer, err)
	}
	monitoring.RecordSubmission()
	s.publish(ctx, EventApplicationSubmitted, app)
	logger = logger.With("loanID", app.ID)
	logger.InfoContext(ctx, "Loan application created, evaluating")

	evaluated, err := s.evaluate(ctx, app, cust)
	if err != nil {
		logger.ErrorContext(ctx, "Evaluation failed, application left pending", "error", err)
		return nil, err
	}

	return NewApplicationView(evaluated), nil
}

func (s *loanServiceImpl) EvaluateApplication(ctx context.Context, applicationID int64) (*LoanApplication, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customerService.GetCustomer(ctx, app.CustomerID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load applicant profile for evaluation", "loanID", applicationID, "error", err)
		return nil, err
	}

	return s.evaluate(ctx, app, cust)
}

func (s *loanServiceImpl) EvaluatePending(ctx context.Context, applicationID int64) (*LoanApplication, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusPending {
		s.logger.InfoContext(ctx, "Application already decided, not re-evaluating", "loanID", applicationID, "status", app.Status)
		return nil, fmt.Errorf("%w: loan application %d is %s", apperrors.ErrConflict, applicationID, app.Status)
	}

	cust, err := s.customerService.GetCustomer(ctx, app.CustomerID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load applicant profile for evaluation", "loanID", applicationID, "error", err)
		return nil, err
	}

	return s.evaluateWith(ctx, app, cust, s.repo.UpdateEvaluationIfPending)
}

func (s *loanServiceImpl) evaluate(ctx context.Context, app *LoanApplication, cust *customer.Customer) (*LoanApplication, error) {
	return s.evaluateWith(ctx, app, cust, s.repo.UpdateEvaluation)
}

func (s *loanServiceImpl) evaluateWith(ctx context.Context, app *LoanApplication, cust *customer.Customer,
	write func(context.Context, *LoanApplication) error) (*LoanApplication, error) {
	logger := s.logger.With("loanID", app.ID)

	eval := s.policy.Score(cust.CreditScore, cust.AnnualIncome, app.AmountRequested)
	if !CanTransition(app.Status, eval.Status, TriggerEvaluation) {
		logger.WarnContext(ctx, "Re-evaluation overwrites a decided application", "previousStatus", app.Status)
	}

	updated := *app
	updated.ApplyEvaluation(eval)
	if err := write(ctx, &updated); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan application %d not found", apperrors.ErrNotFound, app.ID)
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.InfoContext(ctx, "Application left PENDING before its evaluation was written")
			return nil, err
		}
		logger.ErrorContext(ctx, "Failed to persist evaluation", "error", err)
		return nil, fmt.Errorf("%w: failed to persist evaluation: %w", apperrors.ErrInternalServer, err)
	}
	*app = updated

	monitoring.RecordEvaluation(string(eval.Status), eval.Score)
	s.publish(ctx, EventApplicationEvaluated, app)
	logger.InfoContext(ctx, "Loan application evaluated", "status", app.Status, "score", eval.Score, "interestRate", app.InterestRate)
	return app, nil
}

func (s *loanServiceImpl) ReviewApplication(ctx context.Context, principal identity.Principal, applicationID int64, in ReviewInput) (*ApplicationView, error) {
	logger := s.logger.With("loanID", applicationID, "userID", principal.UserID)

	if _, err := ParseReviewAction(string(in.Action)); err != nil {
		logger.WarnContext(ctx, "Invalid review action", "action", in.Action)
		return nil, err
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	off, err := s.officerService.GetByUserID(ctx, principal.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Reviewing officer has no profile", "error", err)
		return nil, err
	}

	previous := app.Status
	app.ApplyReview(off.OfficerID, in.Action, in.Comment)
	if err := s.repo.UpdateReview(ctx, app); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan application %d not found", apperrors.ErrNotFound, applicationID)
		}
		logger.ErrorContext(ctx, "Failed to persist review", "error", err)
		return nil, fmt.Errorf("%w: failed to persist review: %w", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordReview(string(in.Action))
	s.publish(ctx, EventApplicationReviewed, app)
	logger.InfoContext(ctx, "Loan application reviewed", "action", in.Action, "previousStatus", previous, "status", app.Status, "officerID", off.OfficerID)
	return NewApplicationView(app), nil
}

func (s *loanServiceImpl) GetApplication(ctx context.Context, applicationID int64) (*ApplicationView, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return NewApplicationView(app), nil
}

func (s *loanServiceImpl) getApplication(ctx context.Context, applicationID int64) (*LoanApplication, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan application not found", "loanID", applicationID)
			return nil, fmt.Errorf("%w: loan application %d not found", apperrors.ErrNotFound, applicationID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan application", "loanID", applicationID, "error", err)
		return nil, fmt.Errorf("%w: failed to get loan application %d: %w", apperrors.ErrInternalServer, applicationID, err)
	}
	return app, nil
}

func (s *loanServiceImpl) ListCustomerApplications(ctx context.Context, customerID int64) ([]*ApplicationView, error) {
	apps, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customer applications", "customerID", customerID, "error", err)
		return nil, fmt.Errorf("%w: failed to list applications for customer %d: %w", apperrors.ErrInternalServer, customerID, err)
	}
	return NewApplicationViews(apps), nil
}

func (s *loanServiceImpl) ListApplications(ctx context.Context, statusFilter *ApplicationStatus) ([]*ApplicationView, error) {
	if statusFilter != nil {
		status, err := ParseStatus(string(*statusFilter))
		if err != nil {
			return nil, err
		}
		statusFilter = &status
	}

	apps, err := s.repo.List(ctx, statusFilter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list applications", "error", err)
		return nil, fmt.Errorf("%w: failed to list applications: %w", apperrors.ErrInternalServer, err)
	}
	return NewApplicationViews(apps), nil
}

func (s *loanServiceImpl) ListReviewedBy(ctx context.Context, officerUserID int64) ([]*ApplicationView, error) {
	off, err := s.officerService.GetByUserID(ctx, officerUserID)
	if err != nil {
		return nil, err
	}

	apps, err := s.repo.ListByOfficer(ctx, off.OfficerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviewed applications", "officerID", off.OfficerID, "error", err)
		return nil, fmt.Errorf("%w: failed to list reviewed applications: %w", apperrors.ErrInternalServer, err)
	}
	return NewApplicationViews(apps), nil
}

func (s *loanServiceImpl) ListStalePending(ctx context.Context, minAge time.Duration, limit int) ([]*LoanApplication, error) {
	cutoff := time.Now().Add(-minAge)
	apps, err := s.repo.ListPendingCreatedBefore(ctx, cutoff, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list stale pending applications", "error", err)
		return nil, fmt.Errorf("%w: failed to list pending applications: %w", apperrors.ErrInternalServer, err)
	}
	return apps, nil
}

func (s *loanServiceImpl) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats, err := s.repo.GetStatistics(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to compute statistics", "error", err)
		return nil, fmt.Errorf("%w: failed to compute statistics: %w", apperrors.ErrInternalServer, err)
	}
	return stats, nil
}

func (s *loanServiceImpl) publish(ctx context.Context, eventType string, app *LoanApplication) {
	if s.publisher == nil {
		return
	}
	evt := ApplicationEvent{Type: eventType, OccurredAt: time.Now(), Application: *app}
	if err := s.publisher.PublishApplicationEvent(ctx, evt); err != nil {
		monitoring.RecordEventPublished(eventType, "failure")
		s.logger.ErrorContext(ctx, "Failed to publish application event", "eventType", eventType, "loanID", app.ID, "error", err)
		return
	}
	monitoring.RecordEventPublished(eventType, "success")
}
