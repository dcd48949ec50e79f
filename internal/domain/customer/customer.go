package customer

import (
	"fmt"
	"time"

	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

const (
	MinCreditScore     = 300
	MaxCreditScore     = 850
	DefaultCreditScore = MinCreditScore
)

// Customer is the applicant financial profile owned by a CUSTOMER identity.
type Customer struct {
	CustomerID   int64     `json:"customerId"`
	UserID       int64     `json:"userId"`
	AnnualIncome float64   `json:"annualIncome"`
	CreditScore  int       `json:"creditScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var _ identity.Profile = (*Customer)(nil)

func NewCustomer(userID int64, annualIncome float64, creditScore int) (*Customer, error) {
	if creditScore == 0 {
		creditScore = DefaultCreditScore
	}
	c := &Customer{UserID: userID}
	if err := c.apply(&annualIncome, &creditScore); err != nil {
		return nil, err
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (c *Customer) OwnerID() int64       { return c.UserID }
func (c *Customer) Role() identity.Role { return identity.RoleCustomer }

func (c *Customer) OwnedBy(p identity.Principal) bool {
	return p.Role == identity.RoleCustomer && p.UserID == c.UserID
}

// UpdateFinancials changes whichever fields are non-nil. Out-of-range values
// are rejected and leave the profile untouched.
func (c *Customer) UpdateFinancials(annualIncome *float64, creditScore *int) error {
	if err := c.apply(annualIncome, creditScore); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Customer) apply(annualIncome *float64, creditScore *int) error {
	if annualIncome != nil && *annualIncome < 0 {
		return apperrors.NewValidationError("annualIncome", "must not be negative")
	}
	if creditScore != nil && (*creditScore < MinCreditScore || *creditScore > MaxCreditScore) {
		return apperrors.NewValidationError("creditScore",
			fmt.Sprintf("must be between %d and %d", MinCreditScore, MaxCreditScore))
	}
	if annualIncome != nil {
		c.AnnualIncome = *annualIncome
	}
	if creditScore != nil {
		c.CreditScore = *creditScore
	}
	return nil
}
