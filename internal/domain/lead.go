package domain

import "time"

// LeadStatus tracks a lead through its routing lifecycle.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusAssigned   LeadStatus = "assigned"
	LeadStatusUnassigned LeadStatus = "unassigned"
)

// Lead is a prospective customer captured through a marketing funnel.
//
// ID, FunnelID, and CreatedAt are immutable after capture. Status and the
// assignment fields (OrgID, AssignedUserID, RuleID, AssignedAt) are written
// exactly once, by the routing decision; a lead that already carries a
// terminal status is never re-evaluated.
type Lead struct {
	ID        string     `json:"lead_id" dynamodbav:"LeadID"`
	FunnelID  string     `json:"funnel_id" dynamodbav:"FunnelID"`
	Name      string     `json:"name" dynamodbav:"Name"`
	Email     string     `json:"email" dynamodbav:"Email"`
	Phone     string     `json:"phone,omitempty" dynamodbav:"Phone,omitempty"`
	Message   string     `json:"message,omitempty" dynamodbav:"Message,omitempty"`
	ZipCode   string     `json:"zip_code,omitempty" dynamodbav:"ZipCode,omitempty"`
	Status    LeadStatus `json:"status" dynamodbav:"Status"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time  `json:"updated_at" dynamodbav:"UpdatedAt"`

	// Capture metadata, carried opaquely from the funnel page.
	UTMSource   string `json:"utm_source,omitempty" dynamodbav:"UTMSource,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty" dynamodbav:"UTMMedium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty" dynamodbav:"UTMCampaign,omitempty"`

	// Fraud-screening outcome from the external scoring function.
	Suspicious        bool     `json:"suspicious,omitempty" dynamodbav:"Suspicious,omitempty"`
	SuspiciousReasons []string `json:"suspicious_reasons,omitempty" dynamodbav:"SuspiciousReasons,omitempty"`

	// Routing outcome, set once when the assignment decision commits.
	OrgID          string     `json:"org_id,omitempty" dynamodbav:"OrgID,omitempty"`
	AssignedUserID string     `json:"assigned_user_id,omitempty" dynamodbav:"AssignedUserID,omitempty"`
	RuleID         string     `json:"rule_id,omitempty" dynamodbav:"RuleID,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty" dynamodbav:"AssignedAt,omitempty"`

	// Set instead of the assignment fields when routing found no target.
	UnassignedReason UnassignedReason `json:"unassigned_reason,omitempty" dynamodbav:"UnassignedReason,omitempty"`
}

// Routed reports whether this lead already carries a terminal routing outcome.
func (l *Lead) Routed() bool {
	return l.Status == LeadStatusAssigned || l.Status == LeadStatusUnassigned
}

// UnassignedReason explains why the engine could not produce a target.
type UnassignedReason string

const (
	ReasonNoMatchingRule     UnassignedReason = "no_matching_rule"
	ReasonAllRulesCapped     UnassignedReason = "all_rules_capped"
	ReasonAssignmentDisabled UnassignedReason = "assignment_disabled"
)

// UnassignedLeadRecord is the operator-visible trace of a routing failure.
// Records are write-once and expire via the store's TTL attribute.
type UnassignedLeadRecord struct {
	LeadID      string           `json:"lead_id" dynamodbav:"LeadID"`
	FunnelID    string           `json:"funnel_id" dynamodbav:"FunnelID"`
	ZipCode     string           `json:"zip_code,omitempty" dynamodbav:"ZipCode,omitempty"`
	Reason      UnassignedReason `json:"reason" dynamodbav:"Reason"`
	EvaluatedAt time.Time        `json:"evaluated_at" dynamodbav:"EvaluatedAt"`
	TTL         int64            `json:"-" dynamodbav:"TTL,omitempty"`
}
