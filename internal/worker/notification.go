package worker

import (
	"context"
	"fmt"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/events"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// LeadGetter loads one lead record.
type LeadGetter interface {
	Get(ctx context.Context, leadID string) (*domain.Lead, error)
}

// Dispatcher fans one routing outcome out to its recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, fl domain.FeatureFlags, lead *domain.Lead) ([]domain.NotificationRecord, error)
}

// NotificationWorker consumes routing-outcome events and triggers the
// notification fan-out. Partial delivery failures propagate so the bus
// redelivers; dedupe records keep the retry from repeating successful sends.
type NotificationWorker struct {
	flags      FlagSource
	flagSource string
	leads      LeadGetter
	dispatcher Dispatcher
}

// NewNotificationWorker wires the notification stage's event handler.
func NewNotificationWorker(fl FlagSource, flagSource string, leads LeadGetter, dispatcher Dispatcher) *NotificationWorker {
	return &NotificationWorker{flags: fl, flagSource: flagSource, leads: leads, dispatcher: dispatcher}
}

// Handle processes one bus event. An unreadable flag source fails the
// stage closed: the event is acknowledged without sending anything, the
// same as a disabled notification service.
func (w *NotificationWorker) Handle(ctx context.Context, env events.Envelope) error {
	var leadID string
	switch env.Type {
	case domain.EventLeadAssigned:
		var detail domain.LeadAssignedEventDetail
		if err := env.DecodeDetail(&detail); err != nil {
			return err
		}
		leadID = detail.LeadID
	case domain.EventLeadUnassigned:
		var detail domain.LeadUnassignedEventDetail
		if err := env.DecodeDetail(&detail); err != nil {
			return err
		}
		leadID = detail.LeadID
	default:
		logger.Debug("ignoring event", "type", env.Type)
		return nil
	}

	fl, err := w.flags.Load(ctx, w.flagSource)
	if err != nil {
		logger.Error("feature flags unreadable, notification failing closed",
			"lead_id", leadID, "error", err.Error())
		return nil
	}

	lead, err := w.leads.Get(ctx, leadID)
	if err != nil {
		return fmt.Errorf("loading lead %s for notification: %w", leadID, err)
	}

	records, err := w.dispatcher.Dispatch(ctx, fl, lead)
	if err != nil {
		return fmt.Errorf("dispatching notifications for lead %s: %w", leadID, err)
	}

	logger.Info("notifications dispatched", "lead_id", leadID, "records", len(records))
	return nil
}
