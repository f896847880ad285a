package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// Dispatcher fans a routing outcome out to its recipients. Dispatchers are
// stateless and safe for concurrent use; re-invoking Dispatch for the same
// lead is safe because prior "sent" records suppress repeat sends.
type Dispatcher struct {
	records  RecordStore
	dir      Directory
	email    EmailSender
	smsSNS   SMSSender
	smsTwilio SMSSender
	staff    []domain.Recipient
	now      func() time.Time
	ttl      time.Duration
}

// NewDispatcher wires a dispatcher. Either SMS sender may be nil when the
// transport is not configured; the matching feature flag then results in
// skipped records rather than failures.
func NewDispatcher(records RecordStore, dir Directory, email EmailSender, smsSNS, smsTwilio SMSSender, staff []domain.Recipient) *Dispatcher {
	return &Dispatcher{
		records:   records,
		dir:       dir,
		email:     email,
		smsSNS:    smsSNS,
		smsTwilio: smsTwilio,
		staff:     staff,
		now:       time.Now,
		ttl:       90 * 24 * time.Hour,
	}
}

// Dispatch resolves recipients for the lead's routing outcome and attempts
// each (recipient, channel) pair independently. It returns every record it
// wrote this invocation, plus ErrPartialFailure if any send failed — the
// caller leaves the event on the bus so redelivery retries the failures.
func (d *Dispatcher) Dispatch(ctx context.Context, fl domain.FeatureFlags, lead *domain.Lead) ([]domain.NotificationRecord, error) {
	if !fl.EnableNotificationService {
		logger.Warn("notification service disabled, skipping dispatch", "lead_id", lead.ID)
		return nil, nil
	}

	recipients, err := d.resolveRecipients(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("resolving recipients for lead %s: %w", lead.ID, err)
	}

	var (
		written []domain.NotificationRecord
		failed  int
	)
	for _, rcpt := range recipients {
		for _, ch := range channelsFor(rcpt) {
			rec, wrote := d.attempt(ctx, fl, lead, rcpt, ch)
			if !wrote {
				continue
			}
			written = append(written, *rec)
			if rec.Status == domain.NotificationFailed {
				failed++
			}
		}
	}

	if failed > 0 {
		return written, fmt.Errorf("%w: %d of %d attempts failed for lead %s",
			ErrPartialFailure, failed, len(written), lead.ID)
	}
	return written, nil
}

// resolveRecipients returns internal staff always, plus the assigned org's
// opted-in members when the lead was routed to an org.
func (d *Dispatcher) resolveRecipients(ctx context.Context, lead *domain.Lead) ([]domain.Recipient, error) {
	recipients := make([]domain.Recipient, 0, len(d.staff))
	recipients = append(recipients, d.staff...)

	if lead.Status == domain.LeadStatusAssigned && lead.OrgID != "" {
		members, err := d.dir.OrgMembers(ctx, lead.OrgID)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, members...)
	}
	return recipients, nil
}

func channelsFor(r domain.Recipient) []domain.NotificationChannel {
	var out []domain.NotificationChannel
	if r.NotifyEmail && r.Email != "" {
		out = append(out, domain.ChannelEmail)
	}
	if r.NotifySMS && r.Phone != "" {
		out = append(out, domain.ChannelSMS)
	}
	return out
}

// attempt performs dedupe, flag gating, and the send for one
// (recipient, channel) pair. It returns the record written and whether a
// record was written at all (a prior "sent" attempt writes nothing).
func (d *Dispatcher) attempt(ctx context.Context, fl domain.FeatureFlags, lead *domain.Lead, rcpt domain.Recipient, ch domain.NotificationChannel) (*domain.NotificationRecord, bool) {
	prior, err := d.records.Get(ctx, lead.ID, rcpt.ID, ch)
	switch {
	case err == nil && prior.Status == domain.NotificationSent:
		logger.Debug("duplicate notification suppressed", "dedupe_key", prior.DedupeKey())
		return nil, false
	case err != nil && !errors.Is(err, ErrRecordNotFound):
		// Dedupe lookup failed transiently. Proceeding risks a duplicate
		// send, which at-least-once delivery already permits; blocking
		// would risk sending nothing at all.
		logger.Warn("dedupe lookup failed, proceeding with send",
			"lead_id", lead.ID, "recipient_id", rcpt.ID, "channel", string(ch), "error", err)
	}

	rec := &domain.NotificationRecord{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		FunnelID:      lead.FunnelID,
		RecipientType: rcpt.Type,
		RecipientID:   rcpt.ID,
		Channel:       ch,
		SentAt:        d.now().UTC(),
	}
	rec.TTL = rec.SentAt.Add(d.ttl).Unix()

	switch ch {
	case domain.ChannelEmail:
		d.attemptEmail(ctx, fl, lead, rcpt, rec)
	case domain.ChannelSMS:
		d.attemptSMS(ctx, fl, lead, rcpt, rec)
	}

	if err := d.records.Put(ctx, rec); err != nil {
		// The send outcome is lost from the audit trail; redelivery may
		// repeat the send. Log loudly, keep going.
		logger.Error("recording notification attempt failed",
			"lead_id", lead.ID, "recipient_id", rcpt.ID, "channel", string(ch), "error", err)
	}
	return rec, true
}

func (d *Dispatcher) attemptEmail(ctx context.Context, fl domain.FeatureFlags, lead *domain.Lead, rcpt domain.Recipient, rec *domain.NotificationRecord) {
	if !fl.EnableEmailNotifications {
		rec.Status = domain.NotificationSkipped
		return
	}
	subject, body := emailContent(lead)
	msgID, err := d.email.SendEmail(ctx, rcpt.Email, subject, body)
	if err != nil {
		rec.Status = domain.NotificationFailed
		rec.Error = err.Error()
		logger.Error("email send failed",
			"lead_id", lead.ID, "recipient_email", rcpt.Email, "error", err)
		return
	}
	rec.Status = domain.NotificationSent
	rec.ProviderMsgID = msgID
}

func (d *Dispatcher) attemptSMS(ctx context.Context, fl domain.FeatureFlags, lead *domain.Lead, rcpt domain.Recipient, rec *domain.NotificationRecord) {
	sender := d.smsSender(fl)
	if sender == nil {
		rec.Status = domain.NotificationSkipped
		return
	}
	msgID, err := sender.SendSMS(ctx, rcpt.Phone, smsContent(lead))
	if err != nil {
		rec.Status = domain.NotificationFailed
		rec.Error = err.Error()
		logger.Error("sms send failed",
			"lead_id", lead.ID, "recipient_phone", rcpt.Phone, "error", err)
		return
	}
	rec.Status = domain.NotificationSent
	rec.ProviderMsgID = msgID
}

// smsSender picks the SMS transport from the flag snapshot. Twilio wins
// when both transports are enabled and configured.
func (d *Dispatcher) smsSender(fl domain.FeatureFlags) SMSSender {
	if !fl.SMSEnabled() {
		return nil
	}
	if fl.EnableTwilioSMS && d.smsTwilio != nil {
		return d.smsTwilio
	}
	if fl.EnableSNSSMS && d.smsSNS != nil {
		return d.smsSNS
	}
	return nil
}

func emailContent(lead *domain.Lead) (subject, body string) {
	switch lead.Status {
	case domain.LeadStatusAssigned:
		subject = fmt.Sprintf("New lead assigned: %s", lead.Name)
		body = fmt.Sprintf(
			"A new lead from funnel %s has been assigned.\n\nName: %s\nEmail: %s\nPhone: %s\nZip: %s\nMessage: %s\n",
			lead.FunnelID, lead.Name, lead.Email, lead.Phone, lead.ZipCode, lead.Message)
	default:
		subject = fmt.Sprintf("Unassigned lead needs attention: %s", lead.Name)
		body = fmt.Sprintf(
			"A lead from funnel %s could not be routed and is waiting in the unassigned queue.\n\nName: %s\nEmail: %s\nZip: %s\n",
			lead.FunnelID, lead.Name, lead.Email, lead.ZipCode)
	}
	return subject, body
}

func smsContent(lead *domain.Lead) string {
	if lead.Status == domain.LeadStatusAssigned {
		return fmt.Sprintf("New lead assigned: %s (%s). Check your portal for details.", lead.Name, lead.FunnelID)
	}
	return fmt.Sprintf("Unassigned lead waiting: %s (%s).", lead.Name, lead.FunnelID)
}
