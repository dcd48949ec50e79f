package loan

import (
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/pkg/apperrors"
)

const (
	MinAmountRequested  Money   = 1000
	MinTenureMonths             = 1
	MaxTenureMonths             = 360
	DefaultInterestRate float64 = 8.5

	DefaultOfficerRejection = "Rejected by loan officer"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusApproved ApplicationStatus = "APPROVED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// ParseStatus accepts status names case-insensitively.
func ParseStatus(s string) (ApplicationStatus, error) {
	switch status := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case StatusPending, StatusApproved, StatusRejected:
		return status, nil
	default:
		return "", apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
}

type ReviewAction string

const (
	ActionApprove ReviewAction = "APPROVE"
	ActionReject  ReviewAction = "REJECT"
)

// ParseReviewAction only accepts the exact action names.
func ParseReviewAction(s string) (ReviewAction, error) {
	switch action := ReviewAction(s); action {
	case ActionApprove, ActionReject:
		return action, nil
	default:
		return "", apperrors.NewValidationError("action", "action must be either APPROVE or REJECT")
	}
}

// Trigger identifies what caused a status change.
type Trigger string

const (
	TriggerEvaluation Trigger = "evaluation"
	TriggerReview     Trigger = "review"
)

// CanTransition reports whether the lifecycle allows from -> to for trigger.
// Evaluation only resolves PENDING applications. Reviews may overwrite any
// status, including a previous review. Nothing returns an application to PENDING.
func CanTransition(from, to ApplicationStatus, trigger Trigger) bool {
	if to != StatusApproved && to != StatusRejected {
		return false
	}
	switch trigger {
	case TriggerEvaluation:
		return from == StatusPending
	case TriggerReview:
		return from == StatusPending || from == StatusApproved || from == StatusRejected
	default:
		return false
	}
}

type LoanApplication struct {
	ID               int64
	CustomerID       int64
	OfficerID        *int64
	AmountRequested  Money
	TenureMonths     int
	InterestRate     float64
	Status           ApplicationStatus
	EligibilityScore *float64
	RejectionReason  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ValidateTerms(amountRequested Money, tenureMonths int) error {
	if amountRequested < MinAmountRequested {
		return apperrors.NewValidationError("amountRequested", fmt.Sprintf("must be at least %.2f", MinAmountRequested))
	}
	if tenureMonths < MinTenureMonths || tenureMonths > MaxTenureMonths {
		return apperrors.NewValidationError("tenureMonths", fmt.Sprintf("must be between %d and %d", MinTenureMonths, MaxTenureMonths))
	}
	return nil
}

// NewLoanApplication builds a PENDING, unevaluated application.
func NewLoanApplication(customerID int64, amountRequested Money, tenureMonths int, interestRate float64) (*LoanApplication, error) {
	if err := ValidateTerms(amountRequested, tenureMonths); err != nil {
		return nil, err
	}
	if interestRate <= 0 {
		interestRate = DefaultInterestRate
	}

	return &LoanApplication{
		CustomerID:      customerID,
		AmountRequested: amountRequested,
		TenureMonths:    tenureMonths,
		InterestRate:    interestRate,
		Status:          StatusPending,
	}, nil
}

// ApplyEvaluation writes the scorer output onto the application. The rate is
// only replaced on approval.
func (a *LoanApplication) ApplyEvaluation(e Evaluation) {
	score := e.Score
	a.EligibilityScore = &score
	a.Status = e.Status
	if e.InterestRate != nil {
		a.InterestRate = *e.InterestRate
	}
	a.RejectionReason = e.RejectionReason
}

// ApplyReview records an officer decision. An approval only clears an earlier
// rejection reason when the officer left a comment.
func (a *LoanApplication) ApplyReview(officerID int64, action ReviewAction, comment string) {
	a.OfficerID = &officerID
	switch action {
	case ActionApprove:
		a.Status = StatusApproved
		if comment != "" {
			a.RejectionReason = nil
		}
	case ActionReject:
		a.Status = StatusRejected
		reason := comment
		if reason == "" {
			reason = DefaultOfficerRejection
		}
		a.RejectionReason = &reason
	}
}

func (a *LoanApplication) EMI() Money {
	return CalculateEMI(a.AmountRequested, a.InterestRate, a.TenureMonths)
}

// ApplicationView is an application together with its derived instalment.
type ApplicationView struct {
	*LoanApplication
	MonthlyInstallment Money
}

func NewApplicationView(a *LoanApplication) *ApplicationView {
	return &ApplicationView{LoanApplication: a, MonthlyInstallment: a.EMI()}
}

func NewApplicationViews(apps []*LoanApplication) []*ApplicationView {
	views := make([]*ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, NewApplicationView(a))
	}
	return views
}

type Statistics struct {
	Total               int64
	Pending             int64
	Approved            int64
	Rejected            int64
	TotalApprovedAmount Money
}
