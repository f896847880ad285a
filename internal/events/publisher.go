package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// SQSAPI is the slice of the SQS client the bus uses. It exists so tests
// can substitute a fake without a network.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Publisher sends lead lifecycle events to one SQS queue. Sends are
// synchronous: a routing commit whose event cannot be published must
// surface the error so the source message redelivers.
type Publisher struct {
	client   SQSAPI
	queueURL string
	now      func() time.Time
}

// NewPublisher creates an SQS-backed event publisher.
func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL, now: time.Now}
}

// PublishAssigned emits a lead.assigned event for a committed routing
// decision.
func (p *Publisher) PublishAssigned(ctx context.Context, detail domain.LeadAssignedEventDetail) error {
	return p.publish(ctx, domain.EventLeadAssigned, detail)
}

// PublishUnassigned emits a lead.unassigned event for a lead no rule could
// take.
func (p *Publisher) PublishUnassigned(ctx context.Context, detail domain.LeadUnassignedEventDetail) error {
	return p.publish(ctx, domain.EventLeadUnassigned, detail)
}

func (p *Publisher) publish(ctx context.Context, eventType string, detail any) error {
	env, err := NewEnvelope(eventType, p.now(), detail)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling %s envelope: %w", eventType, err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}
	return nil
}
