// Package events carries lead lifecycle events over SQS. The bus is
// at-least-once: the publisher sends synchronously so a failed send
// surfaces to the caller, and the consumer deletes a message only after
// its handler returns nil, leaving failures to redeliver after the
// visibility timeout.
package events
