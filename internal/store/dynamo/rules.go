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

// ActiveRules returns the active assignment rules for a funnel. The rules
// table is keyed PK=FunnelID, SK=RuleID; inactive rules are filtered
// server-side so hot funnels with many retired rules stay cheap to read.
func (r *RuleRepo) ActiveRules(ctx context.Context, funnelID string) ([]domain.AssignmentRule, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("FunnelID = :funnel"),
		FilterExpression:       aws.String("Active = :true"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":funnel": &types.AttributeValueMemberS{Value: funnelID},
			":true":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying rules for funnel %s: %w", funnelID, err)
	}

	rules := make([]domain.AssignmentRule, 0, len(out.Items))
	for _, item := range out.Items {
		var rule domain.AssignmentRule
		if err := attributevalue.UnmarshalMap(item, &rule); err != nil {
			return nil, fmt.Errorf("unmarshaling rule for funnel %s: %w", funnelID, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
