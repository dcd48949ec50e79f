package dto

import (
	"fmt"
	"time"

	"loan-origination/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// ApplyLoanRequest accepts amountRequested as a JSON number or a decimal string.
type ApplyLoanRequest struct {
	CustomerID      int64           `json:"customerId"`
	AmountRequested decimal.Decimal `json:"amountRequested" swaggertype:"string" example:"500000.00"`
	TenureMonths    int             `json:"tenureMonths"`
}

func (r *ApplyLoanRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be a positive number")
	}
	return nil
}

func (r *ApplyLoanRequest) ToInput() loan.SubmitApplicationInput {
	return loan.SubmitApplicationInput{
		CustomerID:      r.CustomerID,
		AmountRequested: r.AmountRequested.Round(2).InexactFloat64(),
		TenureMonths:    r.TenureMonths,
	}
}

// ReviewLoanRequest accepts the officer note as either "comments" or "comment".
type ReviewLoanRequest struct {
	Action   string `json:"action" example:"APPROVE"`
	Comments string `json:"comments,omitempty" example:"Verified income documents"`
	Comment  string `json:"comment,omitempty"`
}

func (r *ReviewLoanRequest) ToInput() loan.ReviewInput {
	comment := r.Comments
	if comment == "" {
		comment = r.Comment
	}
	return loan.ReviewInput{Action: loan.ReviewAction(r.Action), Comment: comment}
}

type LoanApplicationResponse struct {
	ID                 int64     `json:"id"`
	CustomerID         int64     `json:"customerId"`
	OfficerID          *int64    `json:"officerId,omitempty"`
	AmountRequested    string    `json:"amountRequested"`
	TenureMonths       int       `json:"tenureMonths"`
	InterestRate       float64   `json:"interestRate"`
	MonthlyInstallment string    `json:"monthlyInstallment"`
	Status             string    `json:"status"`
	EligibilityScore   *float64  `json:"eligibilityScore,omitempty"`
	RejectionReason    *string   `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewLoanApplicationResponse(v *loan.ApplicationView) LoanApplicationResponse {
	if v == nil || v.LoanApplication == nil {
		return LoanApplicationResponse{}
	}
	return LoanApplicationResponse{
		ID:                 v.ID,
		CustomerID:         v.CustomerID,
		OfficerID:          v.OfficerID,
		AmountRequested:    FormatMoney(v.AmountRequested),
		TenureMonths:       v.TenureMonths,
		InterestRate:       v.InterestRate,
		MonthlyInstallment: FormatMoney(v.MonthlyInstallment),
		Status:             string(v.Status),
		EligibilityScore:   v.EligibilityScore,
		RejectionReason:    v.RejectionReason,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func NewLoanApplicationResponses(views []*loan.ApplicationView) []LoanApplicationResponse {
	resp := make([]LoanApplicationResponse, len(views))
	for i, v := range views {
		resp[i] = NewLoanApplicationResponse(v)
	}
	return resp
}

type StatisticsResponse struct {
	TotalApplications   int64  `json:"totalApplications"`
	Pending             int64  `json:"pending"`
	Approved            int64  `json:"approved"`
	Rejected            int64  `json:"rejected"`
	TotalApprovedAmount string `json:"totalApprovedAmount"`
}

func NewStatisticsResponse(s *loan.Statistics) StatisticsResponse {
	if s == nil {
		return StatisticsResponse{TotalApprovedAmount: FormatMoney(0)}
	}
	return StatisticsResponse{
		TotalApplications:   s.Total,
		Pending:             s.Pending,
		Approved:            s.Approved,
		Rejected:            s.Rejected,
		TotalApprovedAmount: FormatMoney(s.TotalApprovedAmount),
	}
}
