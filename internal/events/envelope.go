package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope wraps every bus message with a type discriminator so consumers
// can route before decoding the payload.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Detail     json.RawMessage `json:"detail"`
}

// NewEnvelope wraps a detail payload for publishing.
func NewEnvelope(eventType string, at time.Time, detail any) (Envelope, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s detail: %w", eventType, err)
	}
	return Envelope{Type: eventType, OccurredAt: at.UTC(), Detail: raw}, nil
}

// DecodeDetail unmarshals the envelope payload into the caller's detail
// struct.
func (e Envelope) DecodeDetail(v any) error {
	if err := json.Unmarshal(e.Detail, v); err != nil {
		return fmt.Errorf("decoding %s detail: %w", e.Type, err)
	}
	return nil
}
