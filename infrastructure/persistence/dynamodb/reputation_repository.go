package dynamodb

import (
	"context"
	"fmt"

	pkgerrors "memorylane-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const balanceSortKey = "BALANCE"

// ReputationRepository implements the ReputationRepository port using
// DynamoDB. Balances live in their own items and are adjusted with atomic
// ADD updates, which also creates the item on first credit.
type ReputationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewReputationRepository creates a new ReputationRepository
func NewReputationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ReputationRepository {
	return &ReputationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func reputationKey(identity string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("REPUTATION#%s", identity)},
		"SK": &types.AttributeValueMemberS{Value: balanceSortKey},
	}
}

// Credit adds points to an identity's balance
func (r *ReputationRepository) Credit(ctx context.Context, identity string, points int64) error {
	if points < 0 {
		return pkgerrors.NewInvalidInputError("credit amount cannot be negative")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              reputationKey(identity),
		UpdateExpression: aws.String("SET EntityType = if_not_exists(EntityType, :type) ADD Balance :points"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":points": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", points)},
			":type":   &types.AttributeValueMemberS{Value: "REPUTATION"},
		},
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		r.logger.Error("Failed to credit reputation",
			zap.Error(err),
			zap.String("identity", identity),
		)
		return fmt.Errorf("failed to credit reputation: %w", err)
	}

	return nil
}

// GetBalance returns the current balance, zero for unknown identities
func (r *ReputationRepository) GetBalance(ctx context.Context, identity string) (int64, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       reputationKey(identity),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to get reputation: %w", err)
	}
	if result.Item == nil {
		return 0, nil
	}

	var item struct {
		Balance int64 `dynamodbav:"Balance"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return 0, fmt.Errorf("failed to unmarshal reputation: %w", err)
	}
	return item.Balance, nil
}
