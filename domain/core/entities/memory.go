package entities

import (
	"fmt"
	"time"

	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/valueobjects"
	"memorylane-backend/domain/events"
	pkgerrors "memorylane-backend/pkg/errors"
)

// Memory is the main entity representing one stored recollection.
// This is a rich domain model with encapsulated business logic; every field
// except the like counter is immutable after creation.
type Memory struct {
	// Private fields ensure encapsulation
	id                   valueobjects.MemoryID
	owner                string
	content              valueobjects.EncryptedContent
	coordinates          valueobjects.Coordinates
	createdAt            time.Time
	unlockTime           time.Time
	inheritanceAddresses []string
	isPublic             bool
	likes                int64
	memoryType           string

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewMemory creates a new memory with full business rule validation.
// The sequence number is the running total of memories ever stored; together
// with owner, coordinates and creation time it makes the derived id unique
// even for identical inputs within one logical step.
func NewMemory(
	owner string,
	content valueobjects.EncryptedContent,
	coordinates valueobjects.Coordinates,
	unlockTime time.Time,
	inheritanceAddresses []string,
	isPublic bool,
	memoryType string,
	now time.Time,
	sequence uint64,
) (*Memory, error) {
	return NewMemoryWithConfig(owner, content, coordinates, unlockTime,
		inheritanceAddresses, isPublic, memoryType, now, sequence, config.DefaultDomainConfig())
}

// NewMemoryWithConfig creates a new memory with validation and configuration
func NewMemoryWithConfig(
	owner string,
	content valueobjects.EncryptedContent,
	coordinates valueobjects.Coordinates,
	unlockTime time.Time,
	inheritanceAddresses []string,
	isPublic bool,
	memoryType string,
	now time.Time,
	sequence uint64,
	cfg *config.DomainConfig,
) (*Memory, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if owner == "" {
		return nil, pkgerrors.NewInvalidInputError("owner cannot be empty")
	}

	if content.IsEmpty() {
		return nil, pkgerrors.NewInvalidInputError("encrypted content cannot be empty")
	}

	if !unlockTime.After(now) {
		return nil, pkgerrors.NewInvalidScheduleError("unlock time must be strictly in the future")
	}

	if len(inheritanceAddresses) > cfg.MaxInheritanceList {
		return nil, pkgerrors.NewInvalidInputError(
			fmt.Sprintf("inheritance list exceeds maximum of %d addresses", cfg.MaxInheritanceList))
	}

	if len(memoryType) > cfg.MaxMemoryTypeLen {
		return nil, pkgerrors.NewInvalidInputError(
			fmt.Sprintf("memory type exceeds maximum length of %d", cfg.MaxMemoryTypeLen))
	}

	// Duplicates in the inheritance list are allowed, just redundant
	addresses := make([]string, len(inheritanceAddresses))
	copy(addresses, inheritanceAddresses)

	memory := &Memory{
		id:                   valueobjects.DeriveMemoryID(owner, coordinates, now, sequence),
		owner:                owner,
		content:              content,
		coordinates:          coordinates,
		createdAt:            now,
		unlockTime:           unlockTime,
		inheritanceAddresses: addresses,
		isPublic:             isPublic,
		likes:                0,
		memoryType:           memoryType,
		events:               []events.DomainEvent{},
	}

	memory.addEvent(events.NewMemoryStored(
		memory.id.String(),
		owner,
		coordinates.Latitude(),
		coordinates.Longitude(),
		unlockTime,
		now,
	))

	return memory, nil
}

// ReconstructMemory reconstructs a memory from repository data with preserved state
func ReconstructMemory(
	id valueobjects.MemoryID,
	owner string,
	content valueobjects.EncryptedContent,
	coordinates valueobjects.Coordinates,
	createdAt, unlockTime time.Time,
	inheritanceAddresses []string,
	isPublic bool,
	likes int64,
	memoryType string,
) (*Memory, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidInputError("memory ID cannot be empty")
	}
	if owner == "" {
		return nil, pkgerrors.NewInvalidInputError("owner cannot be empty")
	}

	return &Memory{
		id:                   id,
		owner:                owner,
		content:              content,
		coordinates:          coordinates,
		createdAt:            createdAt,
		unlockTime:           unlockTime,
		inheritanceAddresses: inheritanceAddresses,
		isPublic:             isPublic,
		likes:                likes,
		memoryType:           memoryType,
		events:               []events.DomainEvent{},
	}, nil
}

// ID returns the memory's unique identifier
func (m *Memory) ID() valueobjects.MemoryID {
	return m.id
}

// Owner returns the creator's identity
func (m *Memory) Owner() string {
	return m.owner
}

// Content returns the opaque encrypted payload
func (m *Memory) Content() valueobjects.EncryptedContent {
	return m.content
}

// Coordinates returns the anchored position
func (m *Memory) Coordinates() valueobjects.Coordinates {
	return m.coordinates
}

// CreatedAt returns the ledger creation time
func (m *Memory) CreatedAt() time.Time {
	return m.createdAt
}

// UnlockTime returns the time-lock expiry
func (m *Memory) UnlockTime() time.Time {
	return m.unlockTime
}

// InheritanceAddresses returns the identities granted post-unlock access
func (m *Memory) InheritanceAddresses() []string {
	addresses := make([]string, len(m.inheritanceAddresses))
	copy(addresses, m.inheritanceAddresses)
	return addresses
}

// IsPublic reports whether any identity may read and like this memory
func (m *Memory) IsPublic() bool {
	return m.isPublic
}

// Likes returns the like counter
func (m *Memory) Likes() int64 {
	return m.likes
}

// MemoryType returns the free-form classification tag
func (m *Memory) MemoryType() string {
	return m.memoryType
}

// Like increments the like counter with business rule validation.
// There is deliberately no per-liker uniqueness: the same identity may like
// a memory repeatedly, matching the ledger's observed behavior.
func (m *Memory) Like(liker string, now time.Time) error {
	if !m.isPublic {
		return pkgerrors.NewInvalidOperationError("cannot like a private memory")
	}
	if liker == m.owner {
		return pkgerrors.NewInvalidOperationError("cannot like your own memory")
	}

	m.likes++

	m.addEvent(events.NewMemoryLiked(m.id.String(), liker, m.likes, now))

	return nil
}

// RecordAccess raises the unlocked notification for a successful retrieval.
// Retrieval changes no memory state; only the event is produced.
func (m *Memory) RecordAccess(accessor string, now time.Time) {
	m.addEvent(events.NewMemoryUnlocked(m.id.String(), accessor, now))
}

// GetUncommittedEvents returns all uncommitted domain events
func (m *Memory) GetUncommittedEvents() []events.DomainEvent {
	return m.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (m *Memory) MarkEventsAsCommitted() {
	m.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (m *Memory) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}
