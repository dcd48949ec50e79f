package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/officer"
	"loan-origination/internal/pkg/identity"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	customerPrincipal = identity.Principal{UserID: 10, Role: identity.RoleCustomer}
	officerPrincipal  = identity.Principal{UserID: 20, Role: identity.RoleOfficer}
)

func newRequest(method, target, body string, principal *identity.Principal, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if principal != nil {
		req = req.WithContext(identity.WithPrincipal(req.Context(), *principal))
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) SubmitApplication(ctx context.Context, principal identity.Principal, in loan.SubmitApplicationInput) (*loan.ApplicationView, error) {
	args := m.Called(ctx, principal, in)
	if v, ok := args.Get(0).(*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) EvaluateApplication(ctx context.Context, applicationID int64) (*loan.LoanApplication, error) {
	args := m.Called(ctx, applicationID)
	if a, ok := args.Get(0).(*loan.LoanApplication); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) EvaluatePending(ctx context.Context, applicationID int64) (*loan.LoanApplication, error) {
	args := m.Called(ctx, applicationID)
	if a, ok := args.Get(0).(*loan.LoanApplication); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ReviewApplication(ctx context.Context, principal identity.Principal, applicationID int64, in loan.ReviewInput) (*loan.ApplicationView, error) {
	args := m.Called(ctx, principal, applicationID, in)
	if v, ok := args.Get(0).(*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetApplication(ctx context.Context, applicationID int64) (*loan.ApplicationView, error) {
	args := m.Called(ctx, applicationID)
	if v, ok := args.Get(0).(*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListCustomerApplications(ctx context.Context, customerID int64) ([]*loan.ApplicationView, error) {
	args := m.Called(ctx, customerID)
	if v, ok := args.Get(0).([]*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListApplications(ctx context.Context, statusFilter *loan.ApplicationStatus) ([]*loan.ApplicationView, error) {
	args := m.Called(ctx, statusFilter)
	if v, ok := args.Get(0).([]*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListReviewedBy(ctx context.Context, officerUserID int64) ([]*loan.ApplicationView, error) {
	args := m.Called(ctx, officerUserID)
	if v, ok := args.Get(0).([]*loan.ApplicationView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListStalePending(ctx context.Context, minAge time.Duration, limit int) ([]*loan.LoanApplication, error) {
	args := m.Called(ctx, minAge, limit)
	if v, ok := args.Get(0).([]*loan.LoanApplication); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetStatistics(ctx context.Context) (*loan.Statistics, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).(*loan.Statistics); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateProfile(ctx context.Context, principal identity.Principal, annualIncome float64, creditScore int) (*customer.Customer, error) {
	args := m.Called(ctx, principal, annualIncome, creditScore)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetProfileByUser(ctx context.Context, userID int64) (*customer.Customer, error) {
	args := m.Called(ctx, userID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateProfile(ctx context.Context, ownerUserID int64, annualIncome *float64, creditScore *int) (*customer.Customer, error) {
	args := m.Called(ctx, ownerUserID, annualIncome, creditScore)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockOfficerService struct {
	mock.Mock
}

func (m *MockOfficerService) CreateProfile(ctx context.Context, principal identity.Principal, branch string) (*officer.Officer, error) {
	args := m.Called(ctx, principal, branch)
	if o, ok := args.Get(0).(*officer.Officer); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOfficerService) GetByUserID(ctx context.Context, userID int64) (*officer.Officer, error) {
	args := m.Called(ctx, userID)
	if o, ok := args.Get(0).(*officer.Officer); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
