package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/assignment"
)

// Get fetches a lead by id. Returns assignment.ErrLeadNotFound when the
// record does not exist.
func (r *LeadRepo) Get(ctx context.Context, leadID string) (*domain.Lead, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"LeadID": &types.AttributeValueMemberS{Value: leadID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting lead %s: %w", leadID, err)
	}
	if out.Item == nil {
		return nil, assignment.ErrLeadNotFound
	}

	var lead domain.Lead
	if err := attributevalue.UnmarshalMap(out.Item, &lead); err != nil {
		return nil, fmt.Errorf("unmarshaling lead %s: %w", leadID, err)
	}
	return &lead, nil
}

// Put writes a lead record. Used by capture glue and test seeding; the
// routing pipeline itself never creates leads.
func (r *LeadRepo) Put(ctx context.Context, lead *domain.Lead) error {
	item, err := attributevalue.MarshalMap(lead)
	if err != nil {
		return fmt.Errorf("marshaling lead %s: %w", lead.ID, err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting lead %s: %w", lead.ID, err)
	}
	return nil
}

// MarkAssigned commits the one-shot assignment transition. The condition
// keys on Status = "new": only the first invocation to reach this write
// wins, every other one observes assignment.ErrAlreadyRouted.
func (r *LeadRepo) MarkAssigned(ctx context.Context, leadID, orgID, userID, ruleID string, at time.Time) error {
	expr := "SET #status = :assigned, OrgID = :org, RuleID = :rule, AssignedAt = :at, UpdatedAt = :at"
	values := map[string]types.AttributeValue{
		":assigned": &types.AttributeValueMemberS{Value: string(domain.LeadStatusAssigned)},
		":new":      &types.AttributeValueMemberS{Value: string(domain.LeadStatusNew)},
		":org":      &types.AttributeValueMemberS{Value: orgID},
		":rule":     &types.AttributeValueMemberS{Value: ruleID},
		":at":       &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339)},
	}
	if userID != "" {
		expr += ", AssignedUserID = :user"
		values[":user"] = &types.AttributeValueMemberS{Value: userID}
	}

	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"LeadID": &types.AttributeValueMemberS{Value: leadID},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(LeadID) AND #status = :new"),
		ExpressionAttributeNames:  map[string]string{"#status": "Status"},
		ExpressionAttributeValues: values,
	})
	if isConditionalCheckFailed(err) {
		return assignment.ErrAlreadyRouted
	}
	if err != nil {
		return fmt.Errorf("marking lead %s assigned: %w", leadID, err)
	}
	return nil
}

// MarkUnassigned commits the one-shot unassigned transition under the same
// condition as MarkAssigned.
func (r *LeadRepo) MarkUnassigned(ctx context.Context, leadID string, reason domain.UnassignedReason, at time.Time) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"LeadID": &types.AttributeValueMemberS{Value: leadID},
		},
		UpdateExpression:         aws.String("SET #status = :unassigned, UnassignedReason = :reason, UpdatedAt = :at"),
		ConditionExpression:      aws.String("attribute_exists(LeadID) AND #status = :new"),
		ExpressionAttributeNames: map[string]string{"#status": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":unassigned": &types.AttributeValueMemberS{Value: string(domain.LeadStatusUnassigned)},
			":new":        &types.AttributeValueMemberS{Value: string(domain.LeadStatusNew)},
			":reason":     &types.AttributeValueMemberS{Value: string(reason)},
			":at":         &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339)},
		},
	})
	if isConditionalCheckFailed(err) {
		return assignment.ErrAlreadyRouted
	}
	if err != nil {
		return fmt.Errorf("marking lead %s unassigned: %w", leadID, err)
	}
	return nil
}
