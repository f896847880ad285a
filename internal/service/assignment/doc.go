// Package assignment implements the lead routing engine.
//
// Given a captured lead, the engine evaluates the funnel's assignment
// rules (zip eligibility, priority order, volume caps) and commits a
// routing outcome: the lead is assigned to an org or user, or it enters
// the unassigned queue with a reason code.
//
// Correctness under at-least-once delivery rests on two store primitives:
// the cap counters mutate only through a conditional increment-if-below-cap,
// and the lead's status transition is a conditional write keyed on "not yet
// routed". A redelivered event finds the lead already routed and becomes a
// no-op; no second reservation is attempted and no duplicate event is
// emitted.
//
// The service layer contains pure business logic and depends on the
// interfaces defined in repository.go. It never imports the DynamoDB SDK
// or net/http directly.
package assignment
