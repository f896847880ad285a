// Package notify implements the outbound notification channels: SES email,
// SNS SMS, and Twilio SMS. Each sender does one thing — deliver a single
// message and return the provider's message id — so the dispatcher owns
// all batching, dedupe, and failure-isolation policy.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESSender sends notification emails through AWS SES v2.
type SESSender struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
}

// NewSESSender creates an SES email sender.
func NewSESSender(client *sesv2.Client, fromEmail, fromName string) *SESSender {
	return &SESSender{client: client, fromEmail: fromEmail, fromName: fromName}
}

// SendEmail delivers one plain-text email and returns the SES message id.
func (s *SESSender) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sending email via SES: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
