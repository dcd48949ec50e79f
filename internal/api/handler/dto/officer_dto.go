package dto

import (
	"time"

	"loan-origination/internal/domain/officer"
)

type CreateOfficerProfileRequest struct {
	Branch string `json:"branch,omitempty" example:"Main Branch"`
}

type OfficerResponse struct {
	OfficerID int64     `json:"officerId"`
	UserID    int64     `json:"userId"`
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewOfficerResponse(o *officer.Officer) OfficerResponse {
	if o == nil {
		return OfficerResponse{}
	}
	return OfficerResponse{
		OfficerID: o.OfficerID,
		UserID:    o.UserID,
		Branch:    o.Branch,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
