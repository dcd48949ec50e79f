package officer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/identity"
)

const DefaultBranch = "Main Branch"

var (
	ErrNotFound = fmt.Errorf("%w: officer profile not found", apperrors.ErrNotFound)

	ErrProfileExists = fmt.Errorf("%w: officer profile already exists for this user", apperrors.ErrConflict)
)

type Officer struct {
	OfficerID int64     `json:"officerId"`
	UserID    int64     `json:"userId"`
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var _ identity.Profile = (*Officer)(nil)

func NewOfficer(userID int64, branch string) *Officer {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = DefaultBranch
	}
	now := time.Now()
	return &Officer{UserID: userID, Branch: branch, CreatedAt: now, UpdatedAt: now}
}

func (o *Officer) OwnerID() int64       { return o.UserID }
func (o *Officer) Role() identity.Role { return identity.RoleOfficer }

func (o *Officer) OwnedBy(p identity.Principal) bool {
	return p.Role == identity.RoleOfficer && p.UserID == o.UserID
}

type OfficerRepository interface {
	Save(ctx context.Context, officer *Officer) error

	FindByUserID(ctx context.Context, userID int64) (*Officer, error)
}
