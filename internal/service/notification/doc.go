// Package notification implements the dispatcher that turns routing
// outcomes into emails and SMS messages.
//
// Recipients come from two places: a statically configured internal-staff
// roster, and, for assigned leads, the target org's members filtered by
// their per-membership channel opt-ins. Every (lead, recipient, channel)
// attempt is recorded; the record doubles as the dedupe key that makes
// redelivery idempotent — a prior "sent" record suppresses the send, a
// prior "failed" record does not.
//
// Sends are isolated per recipient and channel: one failure never blocks
// the rest of the batch, and a channel disabled by feature flag records
// "skipped" instead of reaching the provider at all.
package notification
