package domain

import "time"

// NotificationChannel is the delivery medium for a notification.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// RecipientType distinguishes internal staff from org members.
type RecipientType string

const (
	RecipientInternal  RecipientType = "internal"
	RecipientOrgMember RecipientType = "org_member"
)

// NotificationStatus is the terminal state of one send attempt.
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationSkipped NotificationStatus = "skipped"
)

// NotificationRecord is one (lead, recipient, channel) send attempt. It is
// both the audit trail and the dedupe key for idempotent redelivery: a
// prior record with status "sent" suppresses a repeat send, a prior
// "failed" record does not.
type NotificationRecord struct {
	ID            string              `json:"id" dynamodbav:"ID"`
	LeadID        string              `json:"lead_id" dynamodbav:"LeadID"`
	FunnelID      string              `json:"funnel_id" dynamodbav:"FunnelID"`
	RecipientType RecipientType       `json:"recipient_type" dynamodbav:"RecipientType"`
	RecipientID   string              `json:"recipient_id" dynamodbav:"RecipientID"`
	Channel       NotificationChannel `json:"channel" dynamodbav:"Channel"`
	Status        NotificationStatus  `json:"status" dynamodbav:"Status"`
	ProviderMsgID string              `json:"provider_msg_id,omitempty" dynamodbav:"ProviderMsgID,omitempty"`
	Error         string              `json:"error,omitempty" dynamodbav:"Error,omitempty"`
	SentAt        time.Time           `json:"sent_at" dynamodbav:"SentAt"`
	TTL           int64               `json:"-" dynamodbav:"TTL,omitempty"`
}

// DedupeKey returns the identity of this attempt for idempotency checks.
func (r *NotificationRecord) DedupeKey() string {
	return r.LeadID + "#" + r.RecipientID + "#" + string(r.Channel)
}

// Recipient is a resolved notification target with its reachable addresses.
type Recipient struct {
	Type  RecipientType `json:"type"`
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email,omitempty"`
	Phone string        `json:"phone,omitempty"`

	// Channel opt-ins. Internal staff are always opted into every channel
	// they have an address for; org members carry per-membership prefs.
	NotifyEmail bool `json:"notify_email"`
	NotifySMS   bool `json:"notify_sms"`
}
