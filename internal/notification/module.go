// Package notification delivers counselor-facing notifications driven by
// domain events.
package notification

import (
	"context"

	"admissions_crm_backend/internal/email"
	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/platform/logger"
)

// Module subscribes to assignment events and emails the receiving counselor.
// Delivery is best-effort; failures are logged and never propagate.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// NewModule creates the notification module and registers its event
// subscriptions.
func NewModule(sender email.Sender, eventBus events.Bus, log *logger.Logger) *Module {
	m := &Module{sender: sender, log: log}

	eventBus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadAssigned)
		if !ok {
			return nil
		}
		if e.CounselorEmail == "" {
			return nil
		}
		if err := m.sender.SendLeadAssignedEmail(ctx, e.CounselorEmail, e.CounselorName, e.LeadName, e.TeamName, e.RuleName); err != nil {
			log.SideEffectFailed("notify_assignment", e.LeadID.String(), err)
		}
		return nil
	}))

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}
