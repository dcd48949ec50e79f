// Package identity carries the authenticated caller through a request and
// ties each role to the profile variant it owns.
package identity

import (
	"context"
	"fmt"
	"strings"

	"loan-origination/internal/pkg/apperrors"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOfficer  Role = "OFFICER"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleOfficer:
		return RoleOfficer, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, s)
	}
}

type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsOfficer() bool  { return p.Role == RoleOfficer }
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }

// Profile is implemented by every role-specific profile record.
type Profile interface {
	OwnerID() int64
	Role() Role
	OwnedBy(p Principal) bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
