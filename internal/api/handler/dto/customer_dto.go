package dto

import (
	"time"

	"loan-origination/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type CreateCustomerProfileRequest struct {
	AnnualIncome decimal.Decimal `json:"annualIncome" swaggertype:"string" example:"800000.00"`
	CreditScore  int             `json:"creditScore,omitempty" example:"720"`
}

// UpdateCustomerProfileRequest leaves omitted fields unchanged.
type UpdateCustomerProfileRequest struct {
	AnnualIncome *decimal.Decimal `json:"annualIncome,omitempty" swaggertype:"string"`
	CreditScore  *int             `json:"creditScore,omitempty"`
}

func (r *UpdateCustomerProfileRequest) Income() *float64 {
	if r.AnnualIncome == nil {
		return nil
	}
	v := r.AnnualIncome.InexactFloat64()
	return &v
}

type CustomerResponse struct {
	CustomerID   int64     `json:"customerId"`
	UserID       int64     `json:"userId"`
	AnnualIncome string    `json:"annualIncome"`
	CreditScore  int       `json:"creditScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID:   cust.CustomerID,
		UserID:       cust.UserID,
		AnnualIncome: FormatMoney(cust.AnnualIncome),
		CreditScore:  cust.CreditScore,
		CreatedAt:    cust.CreatedAt,
		UpdatedAt:    cust.UpdatedAt,
	}
}
