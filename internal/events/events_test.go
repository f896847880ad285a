package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

type fakeSQS struct {
	mu       sync.Mutex
	sent     []string
	sendErr  error
	batches  [][]types.Message
	deleted  []string
	received int
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.received >= len(f.batches) {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[f.received]
	f.received++
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) snapshot() (sent, deleted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), append([]string(nil), f.deleted...)
}

func TestPublisher_EnvelopeShape(t *testing.T) {
	fake := &fakeSQS{}
	pub := NewPublisher(fake, "https://sqs.test/q")
	pub.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	err := pub.PublishAssigned(context.Background(), domain.LeadAssignedEventDetail{
		LeadID:           "lead-1",
		FunnelID:         "funnel-1",
		AssignedOrgID:    "org-1",
		AssignmentRuleID: "rule-1",
	})
	if err != nil {
		t.Fatalf("PublishAssigned: %v", err)
	}

	sent, _ := fake.snapshot()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}

	var env Envelope
	if err := json.Unmarshal([]byte(sent[0]), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != domain.EventLeadAssigned {
		t.Errorf("Type = %q, want %q", env.Type, domain.EventLeadAssigned)
	}
	if env.OccurredAt != time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) {
		t.Errorf("OccurredAt = %v", env.OccurredAt)
	}

	var detail domain.LeadAssignedEventDetail
	if err := env.DecodeDetail(&detail); err != nil {
		t.Fatalf("DecodeDetail: %v", err)
	}
	if detail.LeadID != "lead-1" || detail.AssignedOrgID != "org-1" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestPublisher_SendFailureSurfaces(t *testing.T) {
	fake := &fakeSQS{sendErr: errors.New("queue unavailable")}
	pub := NewPublisher(fake, "https://sqs.test/q")

	err := pub.PublishUnassigned(context.Background(), domain.LeadUnassignedEventDetail{LeadID: "lead-1"})
	if err == nil {
		t.Fatal("expected send error to surface")
	}
}

func mustEnvelope(t *testing.T, eventType string, detail any) string {
	t.Helper()
	env, err := NewEnvelope(eventType, time.Now(), detail)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(body)
}

func TestConsumer_DeletesOnSuccessLeavesOnError(t *testing.T) {
	good := mustEnvelope(t, domain.EventLeadCreated, domain.LeadCreatedEventDetail{LeadID: "lead-ok"})
	bad := mustEnvelope(t, domain.EventLeadCreated, domain.LeadCreatedEventDetail{LeadID: "lead-fail"})

	fake := &fakeSQS{batches: [][]types.Message{{
		{Body: aws.String(good), ReceiptHandle: aws.String("h-good")},
		{Body: aws.String(bad), ReceiptHandle: aws.String("h-bad")},
		{Body: aws.String("{not json"), ReceiptHandle: aws.String("h-malformed")},
	}}}

	handled := make(chan string, 4)
	consumer := NewConsumer(fake, "https://sqs.test/q", func(ctx context.Context, env Envelope) error {
		var detail domain.LeadCreatedEventDetail
		if err := env.DecodeDetail(&detail); err != nil {
			return err
		}
		handled <- detail.LeadID
		if detail.LeadID == "lead-fail" {
			return errors.New("transient store failure")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)
	defer consumer.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-handled:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for handler")
		}
	}

	// Let the post-handler deletes land.
	deadline := time.After(2 * time.Second)
	for {
		_, deleted := fake.snapshot()
		if len(deleted) >= 2 {
			for _, h := range deleted {
				if h == "h-bad" {
					t.Fatal("failed message was deleted")
				}
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("deleted = %v, want h-good and h-malformed", deleted)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
