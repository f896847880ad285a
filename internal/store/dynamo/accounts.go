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

// The accounts table is single-table reference data owned by account
// management: PK "ORG#<id>" holds the org profile (SK "PROFILE") and one
// "MEMBER#<userID>" item per membership; PK "USER#<id>" holds the user
// profile. The pipeline only reads it.

type membershipItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Membership
}

type userItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.User
}

// IsMember reports whether the user belongs to the org. Used to validate
// USER-targeted rules before assignment.
func (r *AccountRepo) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "ORG#" + orgID},
			"SK": &types.AttributeValueMemberS{Value: "MEMBER#" + userID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("checking membership %s/%s: %w", orgID, userID, err)
	}
	return out.Item != nil, nil
}

// OrgMembers resolves an org's members into notification recipients with
// their per-membership channel opt-ins.
func (r *AccountRepo) OrgMembers(ctx context.Context, orgID string) ([]domain.Recipient, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :member)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: "ORG#" + orgID},
			":member": &types.AttributeValueMemberS{Value: "MEMBER#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying members of org %s: %w", orgID, err)
	}

	recipients := make([]domain.Recipient, 0, len(out.Items))
	for _, item := range out.Items {
		var m membershipItem
		if err := attributevalue.UnmarshalMap(item, &m); err != nil {
			return nil, fmt.Errorf("unmarshaling membership in org %s: %w", orgID, err)
		}

		user, err := r.getUser(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			// Membership pointing at a deleted user: reference data drift,
			// not a pipeline failure.
			continue
		}

		recipients = append(recipients, domain.Recipient{
			Type:        domain.RecipientOrgMember,
			ID:          user.ID,
			Name:        user.Name,
			Email:       user.Email,
			Phone:       user.Phone,
			NotifyEmail: m.NotifyEmail,
			NotifySMS:   m.NotifySMS,
		})
	}
	return recipients, nil
}

func (r *AccountRepo) getUser(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "USER#" + userID},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", userID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var u userItem
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshaling user %s: %w", userID, err)
	}
	return &u.User, nil
}
