package notification

import "errors"

// Sentinel errors for the notification service layer.
var (
	// ErrRecordNotFound is returned by RecordStore.Get when no attempt
	// exists for the dedupe key.
	ErrRecordNotFound = errors.New("notification record not found")

	// ErrPartialFailure signals that at least one send in the batch
	// failed. The failed attempts are already recorded; redelivery from
	// the bus retries only those.
	ErrPartialFailure = errors.New("one or more notification sends failed")
)
