package assignment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// Outcome is the result of one routing invocation.
type Outcome struct {
	Status domain.LeadStatus `json:"status"`

	// Set when Status == assigned.
	OrgID  string `json:"org_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	RuleID string `json:"rule_id,omitempty"`

	// Set when Status == unassigned.
	Reason domain.UnassignedReason `json:"reason,omitempty"`

	// Duplicate is true when the lead was already routed by an earlier
	// invocation; no state changed and no event was emitted.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Engine orchestrates the zip matcher, the cap ledger, and priority
// ordering to pick a routing target for a lead. Engines are stateless and
// safe for concurrent use; all cross-invocation state lives in the stores.
type Engine struct {
	leads      LeadStore
	rules      RuleSource
	ledger     *CapLedger
	unassigned UnassignedStore
	members    MemberChecker
	events     EventPublisher
	now        func() time.Time

	// Retention for unassigned-queue records.
	unassignedTTL time.Duration
}

// NewEngine wires an assignment engine from its collaborators.
func NewEngine(leads LeadStore, rules RuleSource, ledger *CapLedger, unassigned UnassignedStore, members MemberChecker, events EventPublisher) *Engine {
	return &Engine{
		leads:         leads,
		rules:         rules,
		ledger:        ledger,
		unassigned:    unassigned,
		members:       members,
		events:        events,
		now:           time.Now,
		unassignedTTL: 90 * 24 * time.Hour,
	}
}

// Route evaluates and commits a routing decision for the lead. It is safe
// to invoke any number of times for the same lead: the conditional status
// transition on the lead record is the idempotency boundary, and a lead
// found already routed is a no-op that emits no event.
func (e *Engine) Route(ctx context.Context, fl domain.FeatureFlags, leadID string) (*Outcome, error) {
	lead, err := e.leads.Get(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("loading lead %s: %w", leadID, err)
	}
	if lead.Routed() {
		logger.Debug("lead already routed, skipping", "lead_id", lead.ID, "status", string(lead.Status))
		return &Outcome{Status: lead.Status, Duplicate: true}, nil
	}

	if !fl.EnableAssignmentService {
		logger.Warn("assignment service disabled, queueing lead unassigned", "lead_id", lead.ID)
		return e.commitUnassigned(ctx, lead, domain.ReasonAssignmentDisabled)
	}

	rules, err := e.rules.ActiveRules(ctx, lead.FunnelID)
	if err != nil {
		return nil, fmt.Errorf("loading rules for funnel %s: %w", lead.FunnelID, err)
	}

	candidates := e.eligible(lead, rules)
	if len(candidates) == 0 {
		return e.commitUnassigned(ctx, lead, domain.ReasonNoMatchingRule)
	}

	sortCandidates(candidates)

	capped := false
	for i := range candidates {
		rule := &candidates[i]

		check, err := e.ledger.TryReserve(ctx, rule)
		if err != nil {
			// Transient store failure: treat the rule as not-eligible for
			// this attempt and keep walking. Routing availability wins over
			// perfect quota precision here.
			logger.Warn("cap reservation failed transiently, skipping rule",
				"rule_id", rule.ID, "lead_id", lead.ID, "error", err)
			continue
		}
		if !check.Allowed {
			logger.Debug("rule capped", "rule_id", rule.ID, "reason", check.Reason)
			capped = true
			continue
		}

		userID, ok, err := e.resolveTarget(ctx, rule)
		if err != nil || !ok {
			// Invalid target is a data invariant violation: give the slot
			// back and fall through to the next candidate.
			if err != nil {
				logger.Warn("target resolution failed, skipping rule", "rule_id", rule.ID, "error", err)
			} else {
				logger.Warn("rule targets non-member user, skipping",
					"rule_id", rule.ID, "org_id", rule.OrgID, "target_id", rule.TargetID)
			}
			e.ledger.ReleaseAll(ctx, rule)
			continue
		}

		return e.commitAssigned(ctx, lead, rule, userID)
	}

	// Every candidate was walked without a commit. The reason reports a cap
	// problem only if at least one rule actually hit its cap; a fall-through
	// caused purely by invalid targets or transient skips means no usable
	// rule matched.
	if capped {
		return e.commitUnassigned(ctx, lead, domain.ReasonAllRulesCapped)
	}
	return e.commitUnassigned(ctx, lead, domain.ReasonNoMatchingRule)
}

// eligible filters rules to active, funnel-matching, zip-matching.
func (e *Engine) eligible(lead *domain.Lead, rules []domain.AssignmentRule) []domain.AssignmentRule {
	var out []domain.AssignmentRule
	for _, r := range rules {
		if !r.Active || r.FunnelID != lead.FunnelID {
			continue
		}
		if !ZipMatches(lead.ZipCode, r.ZipPatterns) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortCandidates orders by priority ascending, tie-broken by lexical rule
// ID so identical inputs always route identically.
func sortCandidates(rules []domain.AssignmentRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}

// resolveTarget returns the assigned user for USER rules after checking
// org membership. ORG rules leave the user unset.
func (e *Engine) resolveTarget(ctx context.Context, rule *domain.AssignmentRule) (string, bool, error) {
	if rule.TargetType != domain.TargetUser {
		return "", true, nil
	}
	member, err := e.members.IsMember(ctx, rule.OrgID, rule.TargetID)
	if err != nil {
		return "", false, err
	}
	return rule.TargetID, member, nil
}

func (e *Engine) commitAssigned(ctx context.Context, lead *domain.Lead, rule *domain.AssignmentRule, userID string) (*Outcome, error) {
	at := e.now().UTC()

	err := e.leads.MarkAssigned(ctx, lead.ID, rule.OrgID, userID, rule.ID, at)
	if errors.Is(err, ErrAlreadyRouted) {
		// A concurrent invocation committed first. Give the slot back so
		// the losing reservation does not consume quota.
		logger.Info("lead routed concurrently, releasing reservation", "lead_id", lead.ID, "rule_id", rule.ID)
		e.ledger.ReleaseAll(ctx, rule)
		return &Outcome{Status: domain.LeadStatusAssigned, Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("marking lead %s assigned: %w", lead.ID, err)
	}

	detail := domain.LeadAssignedEventDetail{
		LeadID:           lead.ID,
		FunnelID:         lead.FunnelID,
		AssignedOrgID:    rule.OrgID,
		AssignedUserID:   userID,
		AssignmentRuleID: rule.ID,
		AssignedAt:       at,
		ZipCode:          lead.ZipCode,
	}
	if err := e.events.PublishAssigned(ctx, detail); err != nil {
		// The decision is committed; redelivery will no-op. Surface the
		// publish failure so the invocation is retried and logged.
		return nil, fmt.Errorf("publishing assigned event for lead %s: %w", lead.ID, err)
	}

	logger.Info("lead assigned",
		"lead_id", lead.ID, "funnel_id", lead.FunnelID,
		"org_id", rule.OrgID, "user_id", userID, "rule_id", rule.ID,
		"suspicious", lead.Suspicious)

	return &Outcome{
		Status: domain.LeadStatusAssigned,
		OrgID:  rule.OrgID,
		UserID: userID,
		RuleID: rule.ID,
	}, nil
}

func (e *Engine) commitUnassigned(ctx context.Context, lead *domain.Lead, reason domain.UnassignedReason) (*Outcome, error) {
	at := e.now().UTC()

	// The operator-queue record goes in before the status transition.
	// Record writes are idempotent overwrites, and the lead is still
	// unrouted if this write fails, so the whole invocation stays
	// retryable; committing the status first could strand a routed lead
	// with no record, because redelivery no-ops on routed leads.
	rec := &domain.UnassignedLeadRecord{
		LeadID:      lead.ID,
		FunnelID:    lead.FunnelID,
		ZipCode:     lead.ZipCode,
		Reason:      reason,
		EvaluatedAt: at,
		TTL:         at.Add(e.unassignedTTL).Unix(),
	}
	if err := e.unassigned.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording unassigned lead %s: %w", lead.ID, err)
	}

	err := e.leads.MarkUnassigned(ctx, lead.ID, reason, at)
	if errors.Is(err, ErrAlreadyRouted) {
		return &Outcome{Status: domain.LeadStatusUnassigned, Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("marking lead %s unassigned: %w", lead.ID, err)
	}

	detail := domain.LeadUnassignedEventDetail{
		LeadID:      lead.ID,
		FunnelID:    lead.FunnelID,
		ZipCode:     lead.ZipCode,
		Reason:      reason,
		EvaluatedAt: at,
	}
	if err := e.events.PublishUnassigned(ctx, detail); err != nil {
		return nil, fmt.Errorf("publishing unassigned event for lead %s: %w", lead.ID, err)
	}

	logger.Info("lead unassigned", "lead_id", lead.ID, "funnel_id", lead.FunnelID, "reason", string(reason))

	return &Outcome{Status: domain.LeadStatusUnassigned, Reason: reason}, nil
}
