package domain

import "time"

// RuleTargetType identifies what an assignment rule routes to.
type RuleTargetType string

const (
	TargetOrg  RuleTargetType = "ORG"
	TargetUser RuleTargetType = "USER"
)

// AssignmentRule maps a funnel + geography pattern to a target org or user,
// with optional daily/monthly volume caps. Rules are created and edited in
// the admin surface; the pipeline only reads them.
//
// A USER-targeted rule must resolve to a user that is a member of OrgID.
// The engine treats a violation as a data invariant error: the rule is
// skipped, never assigned.
type AssignmentRule struct {
	ID          string         `json:"rule_id" dynamodbav:"RuleID"`
	FunnelID    string         `json:"funnel_id" dynamodbav:"FunnelID"`
	OrgID       string         `json:"org_id" dynamodbav:"OrgID"`
	TargetType  RuleTargetType `json:"target_type" dynamodbav:"TargetType"`
	TargetID    string         `json:"target_id" dynamodbav:"TargetID"`
	ZipPatterns []string       `json:"zip_patterns" dynamodbav:"ZipPatterns"`
	Priority    int            `json:"priority" dynamodbav:"Priority"`
	DailyCap    int            `json:"daily_cap,omitempty" dynamodbav:"DailyCap,omitempty"`
	MonthlyCap  int            `json:"monthly_cap,omitempty" dynamodbav:"MonthlyCap,omitempty"`
	Active      bool           `json:"active" dynamodbav:"Active"`
	CreatedAt   time.Time      `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time      `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// CapPeriod is the calendar window a cap counter covers.
type CapPeriod string

const (
	PeriodDaily   CapPeriod = "daily"
	PeriodMonthly CapPeriod = "monthly"
)

// CapCheckResult is the outcome of a cap reservation attempt.
type CapCheckResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
