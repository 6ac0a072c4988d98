package dynamodb

import (
	"context"
	"fmt"

	"memorylane-backend/application/ports"
	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// maxTransactItems is the DynamoDB TransactWriteItems limit. One ledger
// operation stages at most four writes, so this is never a practical bound.
const maxTransactItems = 100

// UnitOfWork implements the UnitOfWork port on top of TransactWriteItems.
// Writes are staged locally and submitted as one transaction on Commit; the
// counter update carries a condition on the count observed at Begin, so a
// racing writer fails the whole transaction instead of corrupting sequence
// numbers.
type UnitOfWork struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	memoryRepo     *MemoryRepository
	locationRepo   *LocationRepository
	reputationRepo *ReputationRepository

	active      bool
	staged      []types.TransactWriteItem
	baseCount   uint64
	newMemories uint64
}

// NewUnitOfWork creates a unit of work bound to the table
func NewUnitOfWork(client *dynamodb.Client, tableName, indexName, gsi2IndexName string, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{
		client:         client,
		tableName:      tableName,
		logger:         logger,
		memoryRepo:     NewMemoryRepository(client, tableName, indexName, gsi2IndexName, logger),
		locationRepo:   NewLocationRepository(client, tableName, gsi2IndexName, logger),
		reputationRepo: NewReputationRepository(client, tableName, logger),
	}
}

// Begin starts a new transaction and snapshots the ledger counter
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return pkgerrors.NewInternalError("transaction already active")
	}

	count, err := u.memoryRepo.TotalCount(ctx)
	if err != nil {
		return err
	}

	u.active = true
	u.staged = nil
	u.baseCount = count
	u.newMemories = 0
	return nil
}

// RegisterSave stages a transactional write item
func (u *UnitOfWork) RegisterSave(item types.TransactWriteItem) error {
	if !u.active {
		return pkgerrors.NewInternalError("no active transaction")
	}
	if len(u.staged) >= maxTransactItems {
		return pkgerrors.NewInternalError("transaction exceeds item limit")
	}
	u.staged = append(u.staged, item)
	return nil
}

// Commit submits all staged writes in one TransactWriteItems call
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return pkgerrors.NewInternalError("no active transaction")
	}

	if len(u.staged) == 0 && u.newMemories == 0 {
		u.reset()
		return nil
	}

	items := u.staged
	if u.newMemories > 0 {
		items = append(items, u.counterUpdate())
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}

	if _, err := u.client.TransactWriteItems(ctx, input); err != nil {
		u.logger.Error("Failed to commit ledger transaction",
			zap.Error(err),
			zap.Int("items", len(items)),
		)
		u.reset()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.reset()
	return nil
}

// counterUpdate advances the global sequence counter, guarded against
// concurrent writers by the count observed at Begin
func (u *UnitOfWork) counterUpdate() types.TransactWriteItem {
	update := &types.Update{
		TableName: aws.String(u.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ledgerPartition},
			"SK": &types.AttributeValueMemberS{Value: counterSortKey},
		},
		UpdateExpression: aws.String("ADD MemoryCount :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", u.newMemories)},
		},
	}
	if u.baseCount == 0 {
		update.ConditionExpression = aws.String("attribute_not_exists(MemoryCount) OR MemoryCount = :base")
	} else {
		update.ConditionExpression = aws.String("MemoryCount = :base")
	}
	update.ExpressionAttributeValues[":base"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", u.baseCount)}

	return types.TransactWriteItem{Update: update}
}

// Rollback discards all staged writes
func (u *UnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.reset()
	return nil
}

func (u *UnitOfWork) reset() {
	u.active = false
	u.staged = nil
	u.baseCount = 0
	u.newMemories = 0
}

// MemoryRepository returns the transactional memory repository
func (u *UnitOfWork) MemoryRepository() ports.MemoryRepository {
	return &txMemoryRepository{uow: u}
}

// LocationRepository returns the transactional location repository
func (u *UnitOfWork) LocationRepository() ports.LocationRepository {
	return &txLocationRepository{uow: u}
}

// ReputationRepository returns the transactional reputation repository
func (u *UnitOfWork) ReputationRepository() ports.ReputationRepository {
	return &txReputationRepository{uow: u}
}

// txMemoryRepository stages writes on the unit of work; reads see committed
// state, which is sufficient because handlers read before they write
type txMemoryRepository struct {
	uow *UnitOfWork
}

func (r *txMemoryRepository) Save(ctx context.Context, memory *entities.Memory) error {
	if !r.uow.active {
		return pkgerrors.NewInternalError("no active transaction")
	}

	sequence, exists, err := r.uow.memoryRepo.lookupSequence(ctx, memory.ID().String())
	if err != nil {
		return err
	}
	if !exists {
		sequence = r.uow.baseCount + r.uow.newMemories
		r.uow.newMemories++
	}

	av, err := attributevalue.MarshalMap(buildMemoryItem(memory, sequence))
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	return r.uow.RegisterSave(types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.uow.tableName),
			Item:      av,
		},
	})
}

func (r *txMemoryRepository) GetByID(ctx context.Context, id valueobjects.MemoryID) (*entities.Memory, error) {
	return r.uow.memoryRepo.GetByID(ctx, id)
}

func (r *txMemoryRepository) GetByOwner(ctx context.Context, owner string) ([]*entities.Memory, error) {
	return r.uow.memoryRepo.GetByOwner(ctx, owner)
}

func (r *txMemoryRepository) GetAllInCreationOrder(ctx context.Context) ([]*entities.Memory, error) {
	return r.uow.memoryRepo.GetAllInCreationOrder(ctx)
}

func (r *txMemoryRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	return r.uow.memoryRepo.CountByOwner(ctx, owner)
}

func (r *txMemoryRepository) TotalCount(ctx context.Context) (uint64, error) {
	if !r.uow.active {
		return r.uow.memoryRepo.TotalCount(ctx)
	}
	return r.uow.baseCount + r.uow.newMemories, nil
}

// txLocationRepository stages writes on the unit of work
type txLocationRepository struct {
	uow *UnitOfWork
}

func (r *txLocationRepository) Save(ctx context.Context, location *entities.Location) error {
	if !r.uow.active {
		return pkgerrors.NewInternalError("no active transaction")
	}

	av, err := attributevalue.MarshalMap(buildLocationItem(location))
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	return r.uow.RegisterSave(types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.uow.tableName),
			Item:      av,
		},
	})
}

func (r *txLocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	return r.uow.locationRepo.GetByID(ctx, id)
}

func (r *txLocationRepository) GetByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error) {
	return r.uow.locationRepo.GetByCoordinates(ctx, coords)
}

func (r *txLocationRepository) CountLandmarks(ctx context.Context) (int64, error) {
	return r.uow.locationRepo.CountLandmarks(ctx)
}

// txReputationRepository stages atomic ADD updates on the unit of work
type txReputationRepository struct {
	uow *UnitOfWork
}

func (r *txReputationRepository) Credit(ctx context.Context, identity string, points int64) error {
	if !r.uow.active {
		return pkgerrors.NewInternalError("no active transaction")
	}
	if points < 0 {
		return pkgerrors.NewInvalidInputError("credit amount cannot be negative")
	}

	return r.uow.RegisterSave(types.TransactWriteItem{
		Update: &types.Update{
			TableName:        aws.String(r.uow.tableName),
			Key:              reputationKey(identity),
			UpdateExpression: aws.String("SET EntityType = if_not_exists(EntityType, :type) ADD Balance :points"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":points": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", points)},
				":type":   &types.AttributeValueMemberS{Value: "REPUTATION"},
			},
		},
	})
}

func (r *txReputationRepository) GetBalance(ctx context.Context, identity string) (int64, error) {
	return r.uow.reputationRepo.GetBalance(ctx, identity)
}
