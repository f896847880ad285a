package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/assignment"
)

// counterSK builds the sort key for a period counter, e.g. "daily#2026-08-24".
func counterSK(period domain.CapPeriod, periodKey string) string {
	return fmt.Sprintf("%s#%s", period, periodKey)
}

// counterTTL keeps expired period counters from accumulating. 62 days
// covers the longest period (a month) plus a generous audit window.
const counterTTL = 62 * 24 * time.Hour

// Reserve atomically consumes one slot of the (rule, period) counter.
// The increment and the cap check are a single conditional write: it
// succeeds only when the counter does not exist yet or is strictly below
// cap, so two concurrent reservations can never both slip under the limit.
// A rejection maps to assignment.ErrCapExhausted.
func (r *CounterRepo) Reserve(ctx context.Context, ruleID string, period domain.CapPeriod, periodKey string, cap int) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"RuleID":    &types.AttributeValueMemberS{Value: ruleID},
			"PeriodKey": &types.AttributeValueMemberS{Value: counterSK(period, periodKey)},
		},
		UpdateExpression:    aws.String("ADD AssignCount :one SET ExpireAt = if_not_exists(ExpireAt, :ttl)"),
		ConditionExpression: aws.String("attribute_not_exists(AssignCount) OR AssignCount < :cap"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":cap": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", cap)},
			":ttl": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Add(counterTTL).Unix())},
		},
	})
	if isConditionalCheckFailed(err) {
		return assignment.ErrCapExhausted
	}
	if err != nil {
		return fmt.Errorf("reserving %s slot for rule %s: %w", counterSK(period, periodKey), ruleID, err)
	}
	return nil
}

// Release is the compensating decrement for a reservation that will not be
// used. The condition guards against decrementing a counter that was never
// incremented (or already rolled over).
func (r *CounterRepo) Release(ctx context.Context, ruleID string, period domain.CapPeriod, periodKey string) error {
	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"RuleID":    &types.AttributeValueMemberS{Value: ruleID},
			"PeriodKey": &types.AttributeValueMemberS{Value: counterSK(period, periodKey)},
		},
		UpdateExpression:    aws.String("ADD AssignCount :minus"),
		ConditionExpression: aws.String("attribute_exists(AssignCount) AND AssignCount > :zero"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":minus": &types.AttributeValueMemberN{Value: "-1"},
			":zero":  &types.AttributeValueMemberN{Value: "0"},
		},
	})
	if isConditionalCheckFailed(err) {
		// Nothing to give back; the counter is already at zero.
		return nil
	}
	if err != nil {
		return fmt.Errorf("releasing %s slot for rule %s: %w", counterSK(period, periodKey), ruleID, err)
	}
	return nil
}
