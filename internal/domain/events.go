package domain

import "time"

// Event type discriminators carried in the bus envelope. The bus delivers
// at least once with no cross-partition ordering; consumers must treat
// every event as a possible duplicate.
const (
	EventLeadCreated    = "lead.created"
	EventLeadAssigned   = "lead.assigned"
	EventLeadUnassigned = "lead.unassigned"
)

// LeadCreatedEventDetail announces a freshly captured lead to the
// assignment worker. Field names are part of the bus contract.
type LeadCreatedEventDetail struct {
	LeadID     string    `json:"leadId"`
	FunnelID   string    `json:"funnelId"`
	ZipCode    string    `json:"zipCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
	Suspicious bool      `json:"suspicious"`
	Reasons    []string  `json:"reasons,omitempty"`
}

// LeadAssignedEventDetail announces a committed routing decision.
type LeadAssignedEventDetail struct {
	LeadID           string    `json:"leadId"`
	FunnelID         string    `json:"funnelId"`
	AssignedOrgID    string    `json:"assignedOrgId"`
	AssignedUserID   string    `json:"assignedUserId,omitempty"`
	AssignmentRuleID string    `json:"assignmentRuleId"`
	AssignedAt       time.Time `json:"assignedAt"`
	ZipCode          string    `json:"zipCode,omitempty"`
}

// LeadUnassignedEventDetail announces that no eligible rule could take
// the lead and it entered the unassigned queue.
type LeadUnassignedEventDetail struct {
	LeadID      string           `json:"leadId"`
	FunnelID    string           `json:"funnelId"`
	ZipCode     string           `json:"zipCode,omitempty"`
	Reason      UnassignedReason `json:"reason"`
	EvaluatedAt time.Time        `json:"evaluatedAt"`
}
