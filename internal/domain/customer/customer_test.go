package customer

import (
	"testing"

	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("should default the credit score", func(t *testing.T) {
		c, err := NewCustomer(10, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(10), c.UserID)
		assert.Equal(t, 0.0, c.AnnualIncome)
		assert.Equal(t, DefaultCreditScore, c.CreditScore)
		assert.False(t, c.CreatedAt.IsZero())
	})

	t.Run("should reject a credit score outside the bureau range", func(t *testing.T) {
		_, err := NewCustomer(10, 500_000, 900)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("should reject negative income", func(t *testing.T) {
		_, err := NewCustomer(10, -1, 700)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCustomerUpdateFinancials(t *testing.T) {
	c, err := NewCustomer(10, 300_000, 650)
	require.NoError(t, err)

	income := 450_000.0
	require.NoError(t, c.UpdateFinancials(&income, nil))
	assert.Equal(t, 450_000.0, c.AnnualIncome)
	assert.Equal(t, 650, c.CreditScore)

	for _, score := range []int{299, 851} {
		s := score
		err := c.UpdateFinancials(nil, &s)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, 650, c.CreditScore, "score must not be clamped")
	}

	bad := -5.0
	good := 700
	err = c.UpdateFinancials(&bad, &good)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 650, c.CreditScore, "failed update must not partially apply")

	for _, score := range []int{MinCreditScore, MaxCreditScore} {
		s := score
		assert.NoError(t, c.UpdateFinancials(nil, &s))
	}
}

func TestCustomerProfile(t *testing.T) {
	c := &Customer{CustomerID: 1, UserID: 99}

	assert.Equal(t, int64(99), c.OwnerID())
	assert.Equal(t, identity.RoleCustomer, c.Role())
	assert.True(t, c.OwnedBy(identity.Principal{UserID: 99, Role: identity.RoleCustomer}))
	assert.False(t, c.OwnedBy(identity.Principal{UserID: 98, Role: identity.RoleCustomer}))
	assert.False(t, c.OwnedBy(identity.Principal{UserID: 99, Role: identity.RoleOfficer}))
}
