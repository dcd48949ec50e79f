package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// errorStatus maps the apperrors sentinels onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	detail := dto.ErrorDetail{Message: err.Error()}

	var validationError *apperrors.ValidationError
	if errors.As(err, &validationError) {
		detail.Message, detail.Field = validationError.Message, validationError.Field
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail.Code = appErr.Code
	}

	if status == http.StatusInternalServerError {
		slog.Default().Error("Unhandled internal error", "error", err)
		detail.Message = "An unexpected error occurred."
	}

	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

// logLevel keeps expected client errors out of the error log.
func logLevel(err error) slog.Level {
	if errorStatus(err) == http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

func principalFrom(r *http.Request) (identity.Principal, error) {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		return identity.Principal{}, fmt.Errorf("%w: no authenticated caller", apperrors.ErrUnauthorized)
	}
	return p, nil
}
