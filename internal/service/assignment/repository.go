package assignment

import (
	"context"
	"time"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// RuleSource reads the active assignment-rule set for a funnel. Rules are
// maintained by the admin surface; the engine only reads them.
type RuleSource interface {
	ActiveRules(ctx context.Context, funnelID string) ([]domain.AssignmentRule, error)
}

// LeadStore provides the lead record and its one-shot routing transitions.
// Both Mark methods are conditional on the lead not yet carrying a terminal
// status and return ErrAlreadyRouted when it does.
type LeadStore interface {
	Get(ctx context.Context, leadID string) (*domain.Lead, error)

	MarkAssigned(ctx context.Context, leadID, orgID, userID, ruleID string, at time.Time) error

	MarkUnassigned(ctx context.Context, leadID string, reason domain.UnassignedReason, at time.Time) error
}

// CapStore mutates the per-rule period counters. Reserve increments the
// counter only if the pre-increment value is strictly below cap, returning
// ErrCapExhausted otherwise. Release is the compensating decrement used
// when a daily reservation must be rolled back after a monthly rejection.
type CapStore interface {
	Reserve(ctx context.Context, ruleID string, period domain.CapPeriod, periodKey string, cap int) error

	Release(ctx context.Context, ruleID string, period domain.CapPeriod, periodKey string) error
}

// UnassignedStore records routing failures for operator follow-up.
type UnassignedStore interface {
	Put(ctx context.Context, rec *domain.UnassignedLeadRecord) error
}

// MemberChecker validates that a USER-targeted rule points at a member of
// the rule's org.
type MemberChecker interface {
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// EventPublisher emits routing outcomes onto the event bus.
type EventPublisher interface {
	PublishAssigned(ctx context.Context, detail domain.LeadAssignedEventDetail) error
	PublishUnassigned(ctx context.Context, detail domain.LeadUnassignedEventDetail) error
}
