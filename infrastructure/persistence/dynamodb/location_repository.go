package dynamodb

import (
	"context"
	"fmt"

	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const landmarkPartition = "LANDMARK"

// LocationRepository implements the LocationRepository port using DynamoDB
type LocationRepository struct {
	client        *dynamodb.Client
	tableName     string
	gsi2IndexName string // GSI2 serves the landmark count
	logger        *zap.Logger
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(client *dynamodb.Client, tableName, gsi2IndexName string, logger *zap.Logger) *LocationRepository {
	return &LocationRepository{
		client:        client,
		tableName:     tableName,
		gsi2IndexName: gsi2IndexName,
		logger:        logger,
	}
}

// locationItem represents the DynamoDB item structure for a location.
// Landmark items carry GSI2PK=LANDMARK so the landmark count is a single
// index query instead of a table scan.
type locationItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI2PK          string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK          string `dynamodbav:"GSI2SK,omitempty"`
	EntityType      string `dynamodbav:"EntityType"`
	LocationID      string `dynamodbav:"LocationID"`
	Latitude        int64  `dynamodbav:"Latitude"`
	Longitude       int64  `dynamodbav:"Longitude"`
	MemoryCount     int64  `dynamodbav:"MemoryCount"`
	IsLandmark      bool   `dynamodbav:"IsLandmark"`
	CommunityRating int64  `dynamodbav:"CommunityRating"`
}

func locationKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCATION#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSortKey},
	}
}

// buildLocationItem assembles the item for a location aggregate
func buildLocationItem(location *entities.Location) locationItem {
	item := locationItem{
		PK:              fmt.Sprintf("LOCATION#%s", location.ID().String()),
		SK:              metadataSortKey,
		EntityType:      "LOCATION",
		LocationID:      location.ID().String(),
		Latitude:        location.Coordinates().Latitude(),
		Longitude:       location.Coordinates().Longitude(),
		MemoryCount:     location.MemoryCount(),
		IsLandmark:      location.IsLandmark(),
		CommunityRating: location.CommunityRating(),
	}
	if location.IsLandmark() {
		item.GSI2PK = landmarkPartition
		item.GSI2SK = fmt.Sprintf("LOCATION#%s", location.ID().String())
	}
	return item
}

func (item locationItem) toEntity() (*entities.Location, error) {
	id, err := valueobjects.NewLocationIDFromString(item.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse location ID: %w", err)
	}
	coords, err := valueobjects.NewCoordinates(item.Latitude, item.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to parse coordinates: %w", err)
	}
	return entities.ReconstructLocation(id, coords, item.MemoryCount, item.IsLandmark, item.CommunityRating)
}

// Save persists a location aggregate to DynamoDB
func (r *LocationRepository) Save(ctx context.Context, location *entities.Location) error {
	av, err := attributevalue.MarshalMap(buildLocationItem(location))
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save location to DynamoDB",
			zap.Error(err),
			zap.String("locationID", location.ID().String()),
		)
		return fmt.Errorf("failed to save location: %w", err)
	}

	return nil
}

// GetByID retrieves a location aggregate by its derived ID
func (r *LocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       locationKey(id.String()),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("location")
	}

	var item locationItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}

	return item.toEntity()
}

// GetByCoordinates retrieves the aggregate for an exact coordinate pair
func (r *LocationRepository) GetByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error) {
	return r.GetByID(ctx, valueobjects.DeriveLocationID(coords))
}

// CountLandmarks returns the total number of landmark-latched locations
func (r *LocationRepository) CountLandmarks(ctx context.Context) (int64, error) {
	expr, err := partitionKeyExpression("GSI2PK", landmarkPartition)
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi2IndexName),
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
			return 0, fmt.Errorf("failed to count landmarks: %w", err)
		}
		count += int64(page.Count)
	}

	return count, nil
}
