package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// DayKey returns the UTC calendar-day counter key for t.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// MonthKey returns the UTC calendar-month counter key for t.
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// CapLedger answers "is this rule still within quota" by reserving counter
// slots atomically. A rule is eligible only if both the daily and monthly
// reservations succeed; on a monthly rejection the daily increment is
// released so the blocked rule does not consume daily headroom.
type CapLedger struct {
	caps CapStore
	now  func() time.Time
}

// NewCapLedger creates a ledger over the given counter store.
func NewCapLedger(caps CapStore) *CapLedger {
	return &CapLedger{caps: caps, now: time.Now}
}

// TryReserve attempts to consume one assignment slot for the rule. The
// returned result distinguishes the three outcomes the engine cares about:
// allowed, capped (Allowed=false, nil error), and transient store failure
// (non-nil error — the caller treats the rule as not-eligible for this
// attempt and moves on).
//
// Uncapped rules are always allowed and consume no counter.
func (cl *CapLedger) TryReserve(ctx context.Context, rule *domain.AssignmentRule) (domain.CapCheckResult, error) {
	if rule.DailyCap <= 0 && rule.MonthlyCap <= 0 {
		return domain.CapCheckResult{Allowed: true}, nil
	}

	t := cl.now()
	dailyReserved := false

	if rule.DailyCap > 0 {
		err := cl.caps.Reserve(ctx, rule.ID, domain.PeriodDaily, DayKey(t), rule.DailyCap)
		if errors.Is(err, ErrCapExhausted) {
			return domain.CapCheckResult{Allowed: false, Reason: "daily_cap_reached"}, nil
		}
		if err != nil {
			return domain.CapCheckResult{}, fmt.Errorf("daily reservation for rule %s: %w", rule.ID, err)
		}
		dailyReserved = true
	}

	if rule.MonthlyCap > 0 {
		err := cl.caps.Reserve(ctx, rule.ID, domain.PeriodMonthly, MonthKey(t), rule.MonthlyCap)
		if err == nil {
			return domain.CapCheckResult{Allowed: true}, nil
		}

		if dailyReserved {
			cl.release(ctx, rule.ID, domain.PeriodDaily, DayKey(t))
		}
		if errors.Is(err, ErrCapExhausted) {
			return domain.CapCheckResult{Allowed: false, Reason: "monthly_cap_reached"}, nil
		}
		return domain.CapCheckResult{}, fmt.Errorf("monthly reservation for rule %s: %w", rule.ID, err)
	}

	return domain.CapCheckResult{Allowed: true}, nil
}

// ReleaseAll returns both period slots for the rule. Used as compensation
// when a reservation won but the lead turned out to be routed already by a
// concurrent invocation.
func (cl *CapLedger) ReleaseAll(ctx context.Context, rule *domain.AssignmentRule) {
	t := cl.now()
	if rule.DailyCap > 0 {
		cl.release(ctx, rule.ID, domain.PeriodDaily, DayKey(t))
	}
	if rule.MonthlyCap > 0 {
		cl.release(ctx, rule.ID, domain.PeriodMonthly, MonthKey(t))
	}
}

// release is best-effort: a failed compensating decrement means a slightly
// conservative counter until the period rolls over, which the quota design
// tolerates. It must never abort the routing decision.
func (cl *CapLedger) release(ctx context.Context, ruleID string, period domain.CapPeriod, key string) {
	if err := cl.caps.Release(ctx, ruleID, period, key); err != nil {
		logger.Warn("compensating cap release failed",
			"rule_id", ruleID, "period", string(period), "key", key, "error", err)
	}
}
