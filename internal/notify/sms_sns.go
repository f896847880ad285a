package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSSender sends SMS notifications through AWS SNS direct publish.
type SNSSender struct {
	client   *sns.Client
	senderID string
}

// NewSNSSender creates an SNS SMS sender. senderID is optional; carriers
// in some regions ignore it.
func NewSNSSender(client *sns.Client, senderID string) *SNSSender {
	return &SNSSender{client: client, senderID: senderID}
}

// SendSMS publishes one SMS to an E.164 phone number and returns the SNS
// message id.
func (s *SNSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("publishing SMS via SNS: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
