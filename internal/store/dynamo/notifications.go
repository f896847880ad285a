package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/notification"
)

// attemptSK builds the sort key identifying one (recipient, channel)
// attempt under the lead's partition.
func attemptSK(recipientID string, ch domain.NotificationChannel) string {
	return fmt.Sprintf("%s#%s", recipientID, ch)
}

// notificationItem adds the sort-key attribute to a record; the record's
// own LeadID field is the partition key.
type notificationItem struct {
	domain.NotificationRecord
	AttemptSK string `dynamodbav:"AttemptSK"`
}

// Get returns the attempt for a dedupe key, or
// notification.ErrRecordNotFound.
func (r *NotificationRepo) Get(ctx context.Context, leadID, recipientID string, ch domain.NotificationChannel) (*domain.NotificationRecord, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"LeadID":    &types.AttributeValueMemberS{Value: leadID},
			"AttemptSK": &types.AttributeValueMemberS{Value: attemptSK(recipientID, ch)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting notification %s/%s: %w", leadID, attemptSK(recipientID, ch), err)
	}
	if out.Item == nil {
		return nil, notification.ErrRecordNotFound
	}

	var item notificationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling notification record: %w", err)
	}
	return &item.NotificationRecord, nil
}

// Put writes the attempt record for its dedupe key. A later
// outcome overwrites an earlier one for the same key, so a retried send
// replaces "failed" with "sent".
func (r *NotificationRepo) Put(ctx context.Context, rec *domain.NotificationRecord) error {
	item, err := attributevalue.MarshalMap(notificationItem{
		NotificationRecord: *rec,
		AttemptSK:          attemptSK(rec.RecipientID, rec.Channel),
	})
	if err != nil {
		return fmt.Errorf("marshaling notification record %s: %w", rec.ID, err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting notification record %s: %w", rec.ID, err)
	}
	return nil
}

// ListForLead returns the full audit trail for a lead.
func (r *NotificationRepo) ListForLead(ctx context.Context, leadID string) ([]domain.NotificationRecord, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("LeadID = :lead"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lead": &types.AttributeValueMemberS{Value: leadID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying notifications for lead %s: %w", leadID, err)
	}

	recs := make([]domain.NotificationRecord, 0, len(out.Items))
	for _, item := range out.Items {
		var it notificationItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, fmt.Errorf("unmarshaling notification record: %w", err)
		}
		recs = append(recs, it.NotificationRecord)
	}
	return recs, nil
}
