package transport

import (
	"time"

	"github.com/google/uuid"
)

// StartJourneyRequest opens a journey for an anonymous visitor or a known
// lead.
type StartJourneyRequest struct {
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	AnonymousID *string    `json:"anonymousId,omitempty" validate:"omitempty,max=100"`
}

// RecordTouchpointRequest appends one marketing interaction to a journey.
type RecordTouchpointRequest struct {
	EventType  string     `json:"eventType" validate:"required,max=50"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Channel    *string    `json:"channel,omitempty" validate:"omitempty,max=100"`
	Source     *string    `json:"source,omitempty" validate:"omitempty,max=200"`
	Medium     *string    `json:"medium,omitempty" validate:"omitempty,max=100"`
	Campaign   *string    `json:"campaign,omitempty" validate:"omitempty,max=200"`
	LandingURL *string    `json:"landingUrl,omitempty" validate:"omitempty,max=500"`
	PageURL    *string    `json:"pageUrl,omitempty" validate:"omitempty,max=500"`
	UTMSource  *string    `json:"utmSource,omitempty" validate:"omitempty,max=200"`
	UTMMedium  *string    `json:"utmMedium,omitempty" validate:"omitempty,max=200"`
	UTMTerm    *string    `json:"utmTerm,omitempty" validate:"omitempty,max=200"`
}

// BindLeadRequest attaches a captured lead to an anonymous journey.
type BindLeadRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
}

type JourneyResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	LeadID         *uuid.UUID `json:"leadId,omitempty"`
	AnonymousID    *string    `json:"anonymousId,omitempty"`
	Status         string     `json:"status"`
	FirstTouchAt   *time.Time `json:"firstTouchAt,omitempty"`
	LastTouchAt    *time.Time `json:"lastTouchAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type TouchpointResponse struct {
	ID         uuid.UUID  `json:"id"`
	JourneyID  uuid.UUID  `json:"journeyId"`
	LeadID     *uuid.UUID `json:"leadId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
	EventType  string     `json:"eventType"`
	Channel    *string    `json:"channel,omitempty"`
	Source     *string    `json:"source,omitempty"`
	Medium     *string    `json:"medium,omitempty"`
	Campaign   *string    `json:"campaign,omitempty"`
	LandingURL *string    `json:"landingUrl,omitempty"`
	PageURL    *string    `json:"pageUrl,omitempty"`
	UTMSource  *string    `json:"utmSource,omitempty"`
	UTMMedium  *string    `json:"utmMedium,omitempty"`
	UTMTerm    *string    `json:"utmTerm,omitempty"`
}

// JourneyDetailResponse is a journey with its touchpoints in occurrence
// order.
type JourneyDetailResponse struct {
	JourneyResponse
	Touchpoints []TouchpointResponse `json:"touchpoints"`
}
