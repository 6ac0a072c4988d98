package ports

import (
	"context"
	"time"

	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	"memorylane-backend/domain/events"
)

// MemoryRepository defines the interface for memory persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type MemoryRepository interface {
	// Save persists a memory (create or update)
	Save(ctx context.Context, memory *entities.Memory) error

	// GetByID retrieves a memory by its ID
	GetByID(ctx context.Context, id valueobjects.MemoryID) (*entities.Memory, error)

	// GetByOwner retrieves all memories created by an identity, in creation order
	GetByOwner(ctx context.Context, owner string) ([]*entities.Memory, error)

	// GetAllInCreationOrder retrieves every memory ever stored, ordered by the
	// global sequence assigned at creation. Range queries scan this.
	GetAllInCreationOrder(ctx context.Context) ([]*entities.Memory, error)

	// CountByOwner returns how many memories an identity has created
	CountByOwner(ctx context.Context, owner string) (int64, error)

	// TotalCount returns the number of memories ever stored; this doubles as
	// the next global sequence number
	TotalCount(ctx context.Context) (uint64, error)
}

// LocationRepository defines the interface for location aggregate persistence
type LocationRepository interface {
	// Save persists a location aggregate (create or update)
	Save(ctx context.Context, location *entities.Location) error

	// GetByID retrieves a location aggregate by its derived ID
	GetByID(ctx context.Context, id valueobjects.LocationID) (*entities.Location, error)

	// GetByCoordinates retrieves the aggregate for an exact coordinate pair
	GetByCoordinates(ctx context.Context, coords valueobjects.Coordinates) (*entities.Location, error)

	// CountLandmarks returns the total number of landmark-latched locations
	CountLandmarks(ctx context.Context) (int64, error)
}

// ReputationRepository defines the interface for the reputation ledger
type ReputationRepository interface {
	// Credit adds points to an identity's balance, creating the entry on first use
	Credit(ctx context.Context, identity string, points int64) error

	// GetBalance returns the current balance, zero for unknown identities
	GetBalance(ctx context.Context, identity string) (int64, error)
}

// UnitOfWork defines a transaction boundary for ledger operations.
// Handlers stage every write through the transactional repositories and
// commit once; either all staged writes land or none do.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction
	Rollback() error

	// MemoryRepository returns the memory repository for this transaction
	MemoryRepository() MemoryRepository

	// LocationRepository returns the location repository for this transaction
	LocationRepository() LocationRepository

	// ReputationRepository returns the reputation repository for this transaction
	ReputationRepository() ReputationRepository
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// Clock supplies ledger time. Implementations must never let observed time
// go backwards between calls.
type Clock interface {
	// Now returns the current ledger time
	Now() time.Time
}
