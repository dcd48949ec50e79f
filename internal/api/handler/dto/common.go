package dto

import "github.com/shopspring/decimal"

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
