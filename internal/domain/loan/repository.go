package loan

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a PENDING application and fills in its ID and timestamps.
	Create(ctx context.Context, app *LoanApplication) error

	GetByID(ctx context.Context, id int64) (*LoanApplication, error)

	// UpdateEvaluation writes score, status, rate and reason in one statement.
	UpdateEvaluation(ctx context.Context, app *LoanApplication) error

	// UpdateEvaluationIfPending is UpdateEvaluation restricted to rows still in
	// PENDING. A row that has left PENDING yields ErrConflict.
	UpdateEvaluationIfPending(ctx context.Context, app *LoanApplication) error

	UpdateReview(ctx context.Context, app *LoanApplication) error

	ListByCustomer(ctx context.Context, customerID int64) ([]*LoanApplication, error)

	// List returns every application, newest first, optionally filtered by status.
	List(ctx context.Context, status *ApplicationStatus) ([]*LoanApplication, error)

	// ListByOfficer returns applications reviewed by officerID, most recently updated first.
	ListByOfficer(ctx context.Context, officerID int64) ([]*LoanApplication, error)

	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*LoanApplication, error)

	GetStatistics(ctx context.Context) (*Statistics, error)
}

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationEvaluated = "application.evaluated"
	EventApplicationReviewed  = "application.reviewed"
)

type ApplicationEvent struct {
	Type        string
	OccurredAt  time.Time
	Application LoanApplication
}

type EventPublisher interface {
	PublishApplicationEvent(ctx context.Context, evt ApplicationEvent) error
}
