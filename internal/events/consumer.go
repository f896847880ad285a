package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/logger"
)

// Handler processes one decoded event. A nil return acknowledges the
// message; any error leaves it on the queue to redeliver.
type Handler func(ctx context.Context, env Envelope) error

// Consumer long-polls one SQS queue and dispatches each message to a
// handler.
type Consumer struct {
	client   SQSAPI
	queueURL string
	handler  Handler
	done     chan struct{}
}

// NewConsumer creates a long-polling consumer for queueURL.
func NewConsumer(client SQSAPI, queueURL string, handler Handler) *Consumer {
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
		done:     make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (c *Consumer) Start(ctx context.Context) {
	logger.Info("event consumer started", "queue_url", c.queueURL)
	go c.poll(ctx)
}

// Stop ends polling after the in-flight receive completes.
func (c *Consumer) Stop() {
	close(c.done)
}

func (c *Consumer) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("SQS receive failed", "error", err.Error())
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			var env Envelope
			if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &env); err != nil {
				// Malformed messages would redeliver forever; drop them.
				logger.Error("dropping malformed event", "error", err.Error())
				c.deleteMessage(ctx, msg.ReceiptHandle)
				continue
			}

			if err := c.handler(ctx, env); err != nil {
				logger.Error("event handling failed", "type", env.Type, "error", err.Error())
				continue
			}

			c.deleteMessage(ctx, msg.ReceiptHandle)
		}
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, handle *string) {
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: handle,
	}); err != nil {
		logger.Warn("SQS delete failed", "error", err.Error())
	}
}
