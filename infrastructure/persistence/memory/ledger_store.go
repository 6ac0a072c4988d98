// Package memory provides an in-process implementation of the persistence
// ports. It backs local development and tests, and doubles as the reference
// for the transactional semantics the DynamoDB implementation must match:
// all writes staged on a unit of work land in one critical section or not
// at all, and readers always observe the state as of the last commit.
package memory

import (
	"context"
	"sync"
	"time"

	"memorylane-backend/application/ports"
	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"
)

// memoryRecord is the stored form of a memory, decoupled from the entity so
// committed state can never be mutated through a leaked pointer
type memoryRecord struct {
	id          string
	owner       string
	content     string
	latitude    int64
	longitude   int64
	createdAt   time.Time
	unlockTime  time.Time
	inheritance []string
	isPublic    bool
	likes       int64
	memoryType  string
}

type locationRecord struct {
	id              string
	latitude        int64
	longitude       int64
	memoryCount     int64
	isLandmark      bool
	communityRating int64
}

// LedgerStore holds the whole ledger state in process. It implements the
// memory, location and reputation repository ports directly for the read
// side; mutations go through the unit of work.
type LedgerStore struct {
	mu         sync.RWMutex
	memories   map[string]memoryRecord
	order      []string
	byOwner    map[string][]string
	locations  map[string]locationRecord
	reputation map[string]int64
	totalCount uint64
}

// NewLedgerStore creates an empty store
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		memories:   make(map[string]memoryRecord),
		byOwner:    make(map[string][]string),
		locations:  make(map[string]locationRecord),
		reputation: make(map[string]int64),
	}
}

func recordFromMemory(m *entities.Memory) memoryRecord {
	return memoryRecord{
		id:          m.ID().String(),
		owner:       m.Owner(),
		content:     m.Content().Payload(),
		latitude:    m.Coordinates().Latitude(),
		longitude:   m.Coordinates().Longitude(),
		createdAt:   m.CreatedAt(),
		unlockTime:  m.UnlockTime(),
		inheritance: m.InheritanceAddresses(),
		isPublic:    m.IsPublic(),
		likes:       m.Likes(),
		memoryType:  m.MemoryType(),
	}
}

func (r memoryRecord) toEntity() (*entities.Memory, error) {
	id, err := valueobjects.NewMemoryIDFromString(r.id)
	if err != nil {
		return nil, err
	}
	content, err := valueobjects.NewEncryptedContent(r.content)
	if err != nil {
		return nil, err
	}
	coords, err := valueobjects.NewCoordinates(r.latitude, r.longitude)
	if err != nil {
		return nil, err
	}
	inheritance := make([]string, len(r.inheritance))
	copy(inheritance, r.inheritance)
	return entities.ReconstructMemory(id, r.owner, content, coords,
		r.createdAt, r.unlockTime, inheritance, r.isPublic, r.likes, r.memoryType)
}

func recordFromLocation(l *entities.Location) locationRecord {
	return locationRecord{
		id:              l.ID().String(),
		latitude:        l.Coordinates().Latitude(),
		longitude:       l.Coordinates().Longitude(),
		memoryCount:     l.MemoryCount(),
		isLandmark:      l.IsLandmark(),
		communityRating: l.CommunityRating(),
	}
}

func (r locationRecord) toEntity() (*entities.Location, error) {
	id, err := valueobjects.NewLocationIDFromString(r.id)
	if err != nil {
		return nil, err
	}
	coords, err := valueobjects.NewCoordinates(r.latitude, r.longitude)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructLocation(id, coords, r.memoryCount, r.isLandmark, r.communityRating)
}

// Save persists a memory outside any transaction
func (s *LedgerStore) Save(ctx context.Context, memory *entities.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyMemory(recordFromMemory(memory))
	return nil
}

// applyMemory upserts a record; callers hold the write lock
func (s *LedgerStore) applyMemory(rec memoryRecord) {
	if _, exists := s.memories[rec.id]; !exists {
		s.order = append(s.order, rec.id)
		s.byOwner[rec.owner] = append(s.byOwner[rec.owner], rec.id)
		s.totalCount++
	}
	s.memories[rec.id] = rec
}

// GetByID retrieves a memory by its ID
func (s *LedgerStore) GetByID(ctx context.Context, id valueobjects.MemoryID) (*entities.Memory, error) {
	s.mu.RLock()
	rec, exists := s.memories[id.String()]
	s.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("memory")
	}
	return rec.toEntity()
}

// GetByOwner retrieves an owner's memories in creation order
func (s *LedgerStore) GetByOwner(ctx context.Context, owner string) ([]*entities.Memory, error) {
	s.mu.RLock()
	ids := make([]string, len(s.byOwner[owner]))
	copy(ids, s.byOwner[owner])
	recs := make([]memoryRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, s.memories[id])
	}
	s.mu.RUnlock()

	memories := make([]*entities.Memory, 0, len(recs))
	for _, rec := range recs {
		m, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, nil
}

// GetAllInCreationOrder retrieves every memory in global creation order
func (s *LedgerStore) GetAllInCreationOrder(ctx context.Context) ([]*entities.Memory, error) {
	s.mu.RLock()
	recs := make([]memoryRecord, 0, len(s.order))
	for _, id := range s.order {
		recs = append(recs, s.memories[id])
	}
	s.mu.RUnlock()

	memories := make([]*entities.Memory, 0, len(recs))
	for _, rec := range recs {
		m, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, nil
}

// CountByOwner returns how many memories an identity has created
func (s *LedgerStore) CountByOwner(ctx context.Context, owner string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byOwner[owner])), nil
}

// TotalCount returns the number of memories ever stored
func (s *LedgerStore) TotalCount(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCount, nil
}

// SaveLocation persists a location aggregate outside any transaction
func (s *LedgerStore) SaveLocation(ctx context.Context, location *entities.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[location.ID().String()] = recordFromLocation(location)
	return nil
}

// GetLocationByID retrieves a location aggregate by its derived ID
func (s *LedgerStore) GetLocationByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	s.mu.RLock()
	rec, exists := s.locations[id.String()]
	s.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("location")
	}
	return rec.toEntity()
}

// GetLocationByCoordinates retrieves the aggregate for an exact coordinate pair
func (s *LedgerStore) GetLocationByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error) {
	return s.GetLocationByID(ctx, valueobjects.DeriveLocationID(coords))
}

// CountLandmarks returns the number of landmark-latched locations
func (s *LedgerStore) CountLandmarks(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, rec := range s.locations {
		if rec.isLandmark {
			count++
		}
	}
	return count, nil
}

// CreditReputation adds points to an identity's balance outside any transaction
func (s *LedgerStore) CreditReputation(ctx context.Context, identity string, points int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputation[identity] += points
	return nil
}

// GetReputationBalance returns the balance, zero for unknown identities
func (s *LedgerStore) GetReputationBalance(ctx context.Context, identity string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reputation[identity], nil
}

// MemoryRepository returns the store's memory repository view
func (s *LedgerStore) MemoryRepository() ports.MemoryRepository {
	return s
}

// LocationRepository returns the store's location repository view
func (s *LedgerStore) LocationRepository() ports.LocationRepository {
	return &storeLocationRepository{store: s}
}

// ReputationRepository returns the store's reputation repository view
func (s *LedgerStore) ReputationRepository() ports.ReputationRepository {
	return &storeReputationRepository{store: s}
}

// storeLocationRepository adapts LedgerStore to the LocationRepository port
type storeLocationRepository struct {
	store *LedgerStore
}

func (r *storeLocationRepository) Save(ctx context.Context, location *entities.Location) error {
	return r.store.SaveLocation(ctx, location)
}

func (r *storeLocationRepository) GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error) {
	return r.store.GetLocationByID(ctx, id)
}

func (r *storeLocationRepository) GetByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error) {
	return r.store.GetLocationByCoordinates(ctx, coords)
}

func (r *storeLocationRepository) CountLandmarks(ctx context.Context) (int64, error) {
	return r.store.CountLandmarks(ctx)
}

// storeReputationRepository adapts LedgerStore to the ReputationRepository port
type storeReputationRepository struct {
	store *LedgerStore
}

func (r *storeReputationRepository) Credit(ctx context.Context, identity string, points int64) error {
	return r.store.CreditReputation(ctx, identity, points)
}

func (r *storeReputationRepository) GetBalance(ctx context.Context, identity string) (int64, error) {
	return r.store.GetReputationBalance(ctx, identity)
}
