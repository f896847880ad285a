package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// Put writes an unassigned-queue record. Records are write-once; a
// redelivered evaluation overwrites with identical content, which is
// harmless.
func (r *UnassignedRepo) Put(ctx context.Context, rec *domain.UnassignedLeadRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshaling unassigned record %s: %w", rec.LeadID, err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting unassigned record %s: %w", rec.LeadID, err)
	}
	return nil
}

// List returns unassigned records, optionally filtered to one
// funnel. The table is keyed PK=FunnelID, SK=LeadID, so the funnel path is
// a Query and the all-funnels path is a bounded Scan (operator tooling,
// small result sets).
func (r *UnassignedRepo) List(ctx context.Context, funnelID string, limit int) ([]domain.UnassignedLeadRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	var items []map[string]types.AttributeValue
	if funnelID != "" {
		out, err := r.db.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			KeyConditionExpression: aws.String("FunnelID = :funnel"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":funnel": &types.AttributeValueMemberS{Value: funnelID},
			},
			Limit: aws.Int32(int32(limit)),
		})
		if err != nil {
			return nil, fmt.Errorf("querying unassigned for funnel %s: %w", funnelID, err)
		}
		items = out.Items
	} else {
		out, err := r.db.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.table),
			Limit:     aws.Int32(int32(limit)),
		})
		if err != nil {
			return nil, fmt.Errorf("scanning unassigned records: %w", err)
		}
		items = out.Items
	}

	recs := make([]domain.UnassignedLeadRecord, 0, len(items))
	for _, item := range items {
		var rec domain.UnassignedLeadRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling unassigned record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
