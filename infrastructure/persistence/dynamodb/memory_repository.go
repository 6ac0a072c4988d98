// Package dynamodb persists the ledger in a single DynamoDB table.
//
// Item layout:
//
//	Memory      PK=MEMORY#<id>      SK=METADATA   GSI1PK=OWNER#<owner>  GSI1SK=SEQ#<seq>
//	                                              GSI2PK=LEDGER         GSI2SK=SEQ#<seq>
//	Location    PK=LOCATION#<id>    SK=METADATA   GSI2PK=LANDMARK (only once latched)
//	Reputation  PK=REPUTATION#<id>  SK=BALANCE
//	Counter     PK=LEDGER           SK=COUNTER
//
// GSI1 serves per-owner listings, GSI2 the global creation-order scan and the
// landmark count. The zero-padded sequence keeps lexicographic order equal to
// creation order.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	ledgerPartition = "LEDGER"
	counterSortKey  = "COUNTER"
	metadataSortKey = "METADATA"
)

// MemoryRepository implements the MemoryRepository port using DynamoDB
type MemoryRepository struct {
	client        *dynamodb.Client
	tableName     string
	indexName     string // GSI1 for per-owner queries
	gsi2IndexName string // GSI2 for the global creation-order scan
	logger        *zap.Logger
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository(client *dynamodb.Client, tableName, indexName, gsi2IndexName string, logger *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		client:        client,
		tableName:     tableName,
		indexName:     indexName,
		gsi2IndexName: gsi2IndexName,
		logger:        logger,
	}
}

// memoryItem represents the DynamoDB item structure for a memory
type memoryItem struct {
	PK                   string   `dynamodbav:"PK"`
	SK                   string   `dynamodbav:"SK"`
	GSI1PK               string   `dynamodbav:"GSI1PK"`
	GSI1SK               string   `dynamodbav:"GSI1SK"`
	GSI2PK               string   `dynamodbav:"GSI2PK"`
	GSI2SK               string   `dynamodbav:"GSI2SK"`
	EntityType           string   `dynamodbav:"EntityType"`
	MemoryID             string   `dynamodbav:"MemoryID"`
	Owner                string   `dynamodbav:"Owner"`
	EncryptedContent     string   `dynamodbav:"EncryptedContent"`
	Latitude             int64    `dynamodbav:"Latitude"`
	Longitude            int64    `dynamodbav:"Longitude"`
	CreatedAt            string   `dynamodbav:"CreatedAt"`
	UnlockTime           string   `dynamodbav:"UnlockTime"`
	InheritanceAddresses []string `dynamodbav:"InheritanceAddresses,omitempty"`
	IsPublic             bool     `dynamodbav:"IsPublic"`
	Likes                int64    `dynamodbav:"Likes"`
	MemoryType           string   `dynamodbav:"MemoryType,omitempty"`
	Sequence             uint64   `dynamodbav:"Sequence"`
}

func memoryKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMORY#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSortKey},
	}
}

func sequenceSortKey(sequence uint64) string {
	return fmt.Sprintf("SEQ#%020d", sequence)
}

// partitionKeyExpression builds the key condition for querying one index
// partition in full
func partitionKeyExpression(name, value string) (expression.Expression, error) {
	return expression.NewBuilder().
		WithKeyCondition(expression.Key(name).Equal(expression.Value(value))).
		Build()
}

// buildMemoryItem assembles the item for a memory at a given global sequence
func buildMemoryItem(memory *entities.Memory, sequence uint64) memoryItem {
	return memoryItem{
		PK:                   fmt.Sprintf("MEMORY#%s", memory.ID().String()),
		SK:                   metadataSortKey,
		GSI1PK:               fmt.Sprintf("OWNER#%s", memory.Owner()),
		GSI1SK:               sequenceSortKey(sequence),
		GSI2PK:               ledgerPartition,
		GSI2SK:               sequenceSortKey(sequence),
		EntityType:           "MEMORY",
		MemoryID:             memory.ID().String(),
		Owner:                memory.Owner(),
		EncryptedContent:     memory.Content().Payload(),
		Latitude:             memory.Coordinates().Latitude(),
		Longitude:            memory.Coordinates().Longitude(),
		CreatedAt:            memory.CreatedAt().Format(time.RFC3339Nano),
		UnlockTime:           memory.UnlockTime().Format(time.RFC3339Nano),
		InheritanceAddresses: memory.InheritanceAddresses(),
		IsPublic:             memory.IsPublic(),
		Likes:                memory.Likes(),
		MemoryType:           memory.MemoryType(),
		Sequence:             sequence,
	}
}

func (item memoryItem) toEntity() (*entities.Memory, error) {
	id, err := valueobjects.NewMemoryIDFromString(item.MemoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse memory ID: %w", err)
	}
	content, err := valueobjects.NewEncryptedContent(item.EncryptedContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	coords, err := valueobjects.NewCoordinates(item.Latitude, item.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to parse coordinates: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse creation time: %w", err)
	}
	unlockTime, err := time.Parse(time.RFC3339Nano, item.UnlockTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unlock time: %w", err)
	}

	return entities.ReconstructMemory(id, item.Owner, content, coords,
		createdAt, unlockTime, item.InheritanceAddresses, item.IsPublic, item.Likes, item.MemoryType)
}

// Save persists a memory to DynamoDB outside any transaction
func (r *MemoryRepository) Save(ctx context.Context, memory *entities.Memory) error {
	sequence, exists, err := r.lookupSequence(ctx, memory.ID().String())
	if err != nil {
		return err
	}
	if !exists {
		// Non-transactional saves are only used by tooling; the counter is
		// advanced separately by the unit of work in the serving path
		total, err := r.TotalCount(ctx)
		if err != nil {
			return err
		}
		sequence = total
	}

	item := buildMemoryItem(memory, sequence)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save memory to DynamoDB",
			zap.Error(err),
			zap.String("memoryID", memory.ID().String()),
		)
		return fmt.Errorf("failed to save memory: %w", err)
	}

	return nil
}

// lookupSequence fetches the stored sequence for an existing memory
func (r *MemoryRepository) lookupSequence(ctx context.Context, id string) (uint64, bool, error) {
	input := &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  memoryKey(id),
		ProjectionExpression: aws.String("#seq"),
		ExpressionAttributeNames: map[string]string{
			"#seq": "Sequence",
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up memory: %w", err)
	}
	if result.Item == nil {
		return 0, false, nil
	}

	var item struct {
		Sequence uint64 `dynamodbav:"Sequence"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return 0, false, fmt.Errorf("failed to unmarshal sequence: %w", err)
	}
	return item.Sequence, true, nil
}

// GetByID retrieves a memory by its ID
func (r *MemoryRepository) GetByID(ctx context.Context, id valueobjects.MemoryID) (*entities.Memory, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       memoryKey(id.String()),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("memory")
	}

	var item memoryItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory: %w", err)
	}

	return item.toEntity()
}

// GetByOwner retrieves all memories created by an identity, in creation order
func (r *MemoryRepository) GetByOwner(ctx context.Context, owner string) ([]*entities.Memory, error) {
	expr, err := partitionKeyExpression("GSI1PK", fmt.Sprintf("OWNER#%s", owner))
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	return r.queryMemories(ctx, input)
}

// GetAllInCreationOrder retrieves every memory ordered by global sequence
func (r *MemoryRepository) GetAllInCreationOrder(ctx context.Context) ([]*entities.Memory, error) {
	expr, err := partitionKeyExpression("GSI2PK", ledgerPartition)
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi2IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	return r.queryMemories(ctx, input)
}

// queryMemories pages through a query and unmarshals every item
func (r *MemoryRepository) queryMemories(ctx context.Context, input *dynamodb.QueryInput) ([]*entities.Memory, error) {
	memories := []*entities.Memory{}

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query memories: %w", err)
		}

		for _, raw := range page.Items {
			var item memoryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal memory item", zap.Error(err))
				continue
			}
			memory, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Failed to reconstruct memory",
					zap.String("memoryID", item.MemoryID),
					zap.Error(err),
				)
				continue
			}
			memories = append(memories, memory)
		}
	}

	return memories, nil
}

// CountByOwner returns how many memories an identity has created
func (r *MemoryRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	expr, err := partitionKeyExpression("GSI1PK", fmt.Sprintf("OWNER#%s", owner))
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}

	var count int64
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count memories: %w", err)
		}
		count += int64(page.Count)
	}

	return count, nil
}

// TotalCount reads the ledger counter item; it is also the next sequence
func (r *MemoryRepository) TotalCount(ctx context.Context) (uint64, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ledgerPartition},
			"SK": &types.AttributeValueMemberS{Value: counterSortKey},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger counter: %w", err)
	}
	if result.Item == nil {
		return 0, nil
	}

	var item struct {
		MemoryCount uint64 `dynamodbav:"MemoryCount"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ledger counter: %w", err)
	}
	return item.MemoryCount, nil
}
