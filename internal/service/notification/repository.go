package notification

import (
	"context"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// RecordStore persists notification attempts, keyed by
// (leadID, recipientID, channel).
type RecordStore interface {
	// Get returns the existing attempt for the dedupe key, or
	// ErrRecordNotFound.
	Get(ctx context.Context, leadID, recipientID string, channel domain.NotificationChannel) (*domain.NotificationRecord, error)

	// Put writes an attempt record, overwriting any prior record for the
	// same key (a later "sent" replaces an earlier "failed").
	Put(ctx context.Context, rec *domain.NotificationRecord) error
}

// Directory resolves an org's members with their channel opt-ins. It is
// read-only reference data owned by account management.
type Directory interface {
	OrgMembers(ctx context.Context, orgID string) ([]domain.Recipient, error)
}

// EmailSender delivers one email. Implementations return the provider
// message id on success.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// SMSSender delivers one SMS. Implementations return the provider
// message id on success.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}
