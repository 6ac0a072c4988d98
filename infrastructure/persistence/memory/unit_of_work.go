package memory

import (
	"context"

	"memorylane-backend/application/ports"
	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"
)

// UnitOfWork stages writes against a LedgerStore and applies them in one
// critical section on Commit. Reads within the transaction see staged writes
// first, then committed state. Rollback simply discards the staging area, so
// a failed operation leaves the store untouched.
type UnitOfWork struct {
	store  *LedgerStore
	active bool

	stagedMemories   map[string]memoryRecord
	stagedOrder      []string
	stagedLocations  map[string]locationRecord
	stagedReputation map[string]int64
}

// NewUnitOfWork creates a unit of work bound to the store
func NewUnitOfWork(store *LedgerStore) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin starts a new transaction
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return pkgerrors.NewInternalError("transaction already active")
	}
	u.active = true
	u.stagedMemories = make(map[string]memoryRecord)
	u.stagedOrder = nil
	u.stagedLocations = make(map[string]locationRecord)
	u.stagedReputation = make(map[string]int64)
	return nil
}

// Commit applies all staged writes atomically
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return pkgerrors.NewInternalError("no active transaction")
	}

	u.store.mu.Lock()
	for _, id := range u.stagedOrder {
		u.store.applyMemory(u.stagedMemories[id])
	}
	for id, rec := range u.stagedMemories {
		if !containsID(u.stagedOrder, id) {
			u.store.applyMemory(rec)
		}
	}
	for id, rec := range u.stagedLocations {
		u.store.locations[id] = rec
	}
	for identity, delta := range u.stagedReputation {
		u.store.reputation[identity] += delta
	}
	u.store.mu.Unlock()

	u.reset()
	return nil
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
	u.stagedMemories = nil
	u.stagedOrder = nil
	u.stagedLocations = nil
	u.stagedReputation = nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
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

// txMemoryRepository reads through the staging area and stages all writes
type txMemoryRepository struct {
	uow *UnitOfWork
}

func (r *txMemoryRepository) Save(ctx context.Context, memory *entities.Memory) error {
	if !r.uow.active {
		return pkgerrors.NewInternalError("no active transaction")
	}
	rec := recordFromMemory(memory)

	r.uow.store.mu.RLock()
	_, committed := r.uow.store.memories[rec.id]
	r.uow.store.mu.RUnlock()

	if _, staged := r.uow.stagedMemories[rec.id]; !staged && !committed {
		r.uow.stagedOrder = append(r.uow.stagedOrder, rec.id)
	}
	r.uow.stagedMemories[rec.id] = rec
	return nil
}

func (r *txMemoryRepository) GetByID(ctx context.Context, id valueobjects.MemoryID) (*entities.Memory, error) {
	if rec, staged := r.uow.stagedMemories[id.String()]; staged {
		return rec.toEntity()
	}
	return r.uow.store.GetByID(ctx, id)
}

func (r *txMemoryRepository) GetByOwner(ctx context.Context, owner string) ([]*entities.Memory, error) {
	return r.uow.store.GetByOwner(ctx, owner)
}

func (r *txMemoryRepository) GetAllInCreationOrder(ctx context.Context) ([]*entities.Memory, error) {
	return r.uow.store.GetAllInCreationOrder(ctx)
}

func (r *txMemoryRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	return r.uow.store.CountByOwner(ctx, owner)
}

func (r *txMemoryRepository) TotalCount(ctx context.Context) (uint64, error) {
	count, err := r.uow.store.TotalCount(ctx)
	if err != nil {
		return 0, err
	}
	return count + uint64(len(r.uow.stagedOrder)), nil
}

// txLocationRepository reads through the staging area and stages all writes
type txLocationRepository struct {
	uow *UnitOfWork
}

func (r *txLocationRepository) Save(ctx context.Context, location *entities.Location) error {
	if !r.uow.active {
		return pkgerrors.NewInternalError("no active transaction")
	}
	r.uow.stagedLocations[location.ID().String()] = recordFromLocation(location)
	return nil
}

func (r *txLocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	if rec, staged := r.uow.stagedLocations[id.String()]; staged {
		return rec.toEntity()
	}
	return r.uow.store.GetLocationByID(ctx, id)
}

func (r *txLocationRepository) GetByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error) {
	return r.GetByID(ctx, valueobjects.DeriveLocationID(coords))
}

func (r *txLocationRepository) CountLandmarks(ctx context.Context) (int64, error) {
	return r.uow.store.CountLandmarks(ctx)
}

// txReputationRepository accumulates credit deltas in the staging area
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
	r.uow.stagedReputation[identity] += points
	return nil
}

func (r *txReputationRepository) GetBalance(ctx context.Context, identity string) (int64, error) {
	balance, err := r.uow.store.GetReputationBalance(ctx, identity)
	if err != nil {
		return 0, err
	}
	return balance + r.uow.stagedReputation[identity], nil
}
