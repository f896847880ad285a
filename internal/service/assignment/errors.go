package assignment

import "errors"

// Sentinel errors for the assignment service layer. Store implementations
// map their conditional-write rejections onto these so the engine can
// distinguish policy outcomes from transient infrastructure failures.
var (
	// ErrCapExhausted is returned by CapStore.Reserve when the counter is
	// already at its cap. It is a routing outcome, not a failure.
	ErrCapExhausted = errors.New("cap exhausted for period")

	// ErrAlreadyRouted is returned by LeadStore conditional transitions
	// when the lead already carries a terminal routing status.
	ErrAlreadyRouted = errors.New("lead already routed")

	// ErrLeadNotFound is returned when the lead record does not exist.
	ErrLeadNotFound = errors.New("lead not found")
)
