package worker

import (
	"context"
	"fmt"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/events"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/assignment"
)

// FlagSource loads the feature-flag snapshot for one invocation.
type FlagSource interface {
	Load(ctx context.Context, source string) (domain.FeatureFlags, error)
}

// Router commits a routing decision for one lead.
type Router interface {
	Route(ctx context.Context, fl domain.FeatureFlags, leadID string) (*assignment.Outcome, error)
}

// AssignmentWorker consumes lead.created events and routes each lead
// through the assignment engine. One flag snapshot is loaded per event and
// held for the whole invocation.
type AssignmentWorker struct {
	flags      FlagSource
	flagSource string
	router     Router
}

// NewAssignmentWorker wires the assignment stage's event handler.
func NewAssignmentWorker(fl FlagSource, flagSource string, router Router) *AssignmentWorker {
	return &AssignmentWorker{flags: fl, flagSource: flagSource, router: router}
}

// Handle processes one bus event. Unknown event types acknowledge without
// action so a shared queue never wedges on foreign messages. An unreadable
// flag source fails the stage closed: routing proceeds with zero flags and
// the lead lands in the unassigned queue instead of being dropped.
func (w *AssignmentWorker) Handle(ctx context.Context, env events.Envelope) error {
	if env.Type != domain.EventLeadCreated {
		logger.Debug("ignoring event", "type", env.Type)
		return nil
	}

	var detail domain.LeadCreatedEventDetail
	if err := env.DecodeDetail(&detail); err != nil {
		return err
	}

	fl, err := w.flags.Load(ctx, w.flagSource)
	if err != nil {
		logger.Error("feature flags unreadable, assignment failing closed",
			"lead_id", detail.LeadID, "error", err.Error())
	}

	outcome, err := w.router.Route(ctx, fl, detail.LeadID)
	if err != nil {
		return fmt.Errorf("routing lead %s: %w", detail.LeadID, err)
	}

	if outcome.Duplicate {
		logger.Debug("redelivered lead already routed", "lead_id", detail.LeadID)
	}
	return nil
}
