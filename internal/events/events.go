// Package events defines the domain events exchanged between modules and
// re-exports the platform event bus for convenience.
package events

import (
	platformevents "admissions_crm_backend/platform/events"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Bus is the event bus interface modules depend on.
type Bus = platformevents.Bus

// Event is the base event interface.
type Event = platformevents.Event

// Handler processes events of a specific type.
type Handler = platformevents.Handler

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc = platformevents.HandlerFunc

// InMemoryBus is the in-process bus implementation.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// LeadCreated is published after a lead is captured. Scoring and assignment
// subscribe to it as independent best-effort side effects.
type LeadCreated struct {
	platformevents.BaseEvent
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
}

// EventName returns the event identifier.
func (LeadCreated) EventName() string { return "lead.created" }

// NewLeadCreated creates a LeadCreated event.
func NewLeadCreated(leadID, orgID uuid.UUID) LeadCreated {
	return LeadCreated{
		BaseEvent:      platformevents.NewBaseEvent(),
		LeadID:         leadID,
		OrganizationID: orgID,
	}
}

// LeadAssigned is published after a lead is bound to a counselor, whether by
// rule matching or manual reassignment.
type LeadAssigned struct {
	platformevents.BaseEvent
	LeadID         uuid.UUID
	LeadName       string
	CounselorID    uuid.UUID
	CounselorEmail string
	CounselorName  string
	TeamName       string
	RuleName       string
}

// EventName returns the event identifier.
func (LeadAssigned) EventName() string { return "lead.assigned" }

// NewLeadAssigned creates a LeadAssigned event.
func NewLeadAssigned(leadID uuid.UUID, leadName string, counselorID uuid.UUID, counselorEmail, counselorName, teamName, ruleName string) LeadAssigned {
	return LeadAssigned{
		BaseEvent:      platformevents.NewBaseEvent(),
		LeadID:         leadID,
		LeadName:       leadName,
		CounselorID:    counselorID,
		CounselorEmail: counselorEmail,
		CounselorName:  counselorName,
		TeamName:       teamName,
		RuleName:       ruleName,
	}
}

// LeadScored is published after a scoring run persists new sub-scores.
type LeadScored struct {
	platformevents.BaseEvent
	LeadID     uuid.UUID
	TotalScore int
	Hotness    string
}

// EventName returns the event identifier.
func (LeadScored) EventName() string { return "lead.scored" }

// NewLeadScored creates a LeadScored event.
func NewLeadScored(leadID uuid.UUID, totalScore int, hotness string) LeadScored {
	return LeadScored{
		BaseEvent:  platformevents.NewBaseEvent(),
		LeadID:     leadID,
		TotalScore: totalScore,
		Hotness:    hotness,
	}
}
