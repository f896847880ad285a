package domain

import "time"

// Org is a customer organization that receives routed leads. Owned by
// account management; the pipeline only reads it.
type Org struct {
	ID        string    `json:"org_id" dynamodbav:"OrgID"`
	Name      string    `json:"name" dynamodbav:"Name"`
	Active    bool      `json:"active" dynamodbav:"Active"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"CreatedAt"`
}

// User is a person who can be a rule target or a notification recipient.
type User struct {
	ID    string `json:"user_id" dynamodbav:"UserID"`
	Name  string `json:"name" dynamodbav:"Name"`
	Email string `json:"email" dynamodbav:"Email"`
	Phone string `json:"phone,omitempty" dynamodbav:"Phone,omitempty"`
}

// Membership links a user to an org, with per-channel notification opt-ins.
type Membership struct {
	OrgID       string `json:"org_id" dynamodbav:"OrgID"`
	UserID      string `json:"user_id" dynamodbav:"UserID"`
	Role        string `json:"role,omitempty" dynamodbav:"Role,omitempty"`
	NotifyEmail bool   `json:"notify_email" dynamodbav:"NotifyEmail"`
	NotifySMS   bool   `json:"notify_sms" dynamodbav:"NotifySMS"`
}
