package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewValidationError("f", "bad"), http.StatusBadRequest},
		{fmt.Errorf("%w: x", apperrors.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: x", apperrors.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: x", apperrors.ErrForbidden), http.StatusForbidden},
		{customer.ErrNotFound, http.StatusNotFound},
		{customer.ErrProfileExists, http.StatusConflict},
		{fmt.Errorf("%w: dup", apperrors.ErrAlreadyExists), http.StatusConflict},
		{apperrors.WrapDatabaseError(errors.New("boom"), "query failed"), http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}

func TestRespondErrorIncludesAppErrorCode(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, fmt.Errorf("%w: %w", apperrors.ErrConflict, &apperrors.AppError{Code: "DUPLICATE", Message: "already there"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "DUPLICATE", resp.Error.Code)
}

func TestRespondErrorHidesDatabaseFailureButKeepsCode(t *testing.T) {
	rec := httptest.NewRecorder()
	dbErr := apperrors.WrapDatabaseError(errors.New("connection reset by peer"), "failed to get loan application")
	respondError(rec, fmt.Errorf("%w: failed to get loan application 4: %w", apperrors.ErrInternalServer, dbErr))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "DB_ERROR", resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred.", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
