package event

import (
	"time"

	"loan-origination/internal/domain/loan"

	"github.com/google/uuid"
)

// ApplicationPayload is the wire form of a loan application snapshot.
type ApplicationPayload struct {
	ApplicationID      int64    `json:"applicationId"`
	CustomerID         int64    `json:"customerId"`
	OfficerID          *int64   `json:"officerId,omitempty"`
	AmountRequested    float64  `json:"amountRequested"`
	TenureMonths       int      `json:"tenureMonths"`
	InterestRate       float64  `json:"interestRate"`
	MonthlyInstallment float64  `json:"monthlyInstallment"`
	Status             string   `json:"status"`
	EligibilityScore   *float64 `json:"eligibilityScore,omitempty"`
	RejectionReason    *string  `json:"rejectionReason,omitempty"`
}

type ApplicationEventMessage struct {
	EventID   string             `json:"eventId"`
	EventType string             `json:"eventType"`
	Timestamp time.Time          `json:"timestamp"`
	Payload   ApplicationPayload `json:"payload"`
}

func NewApplicationEventMessage(evt loan.ApplicationEvent) ApplicationEventMessage {
	app := evt.Application
	return ApplicationEventMessage{
		EventID:   uuid.NewString(),
		EventType: evt.Type,
		Timestamp: evt.OccurredAt.UTC(),
		Payload: ApplicationPayload{
			ApplicationID:      app.ID,
			CustomerID:         app.CustomerID,
			OfficerID:          app.OfficerID,
			AmountRequested:    app.AmountRequested,
			TenureMonths:       app.TenureMonths,
			InterestRate:       app.InterestRate,
			MonthlyInstallment: app.EMI(),
			Status:             string(app.Status),
			EligibilityScore:   app.EligibilityScore,
			RejectionReason:    app.RejectionReason,
		},
	}
}
