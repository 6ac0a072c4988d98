package events

import (
	"time"

	"github.com/google/uuid"
)

// Source is the event source name used by the delivery channel
const Source = "memorylane.ledger"

// Event type names for the four notification kinds the ledger emits
const (
	TypeMemoryStored           = "memory.stored"
	TypeMemoryUnlocked         = "memory.unlocked"
	TypeMemoryLiked            = "memory.liked"
	TypeLocationBecameLandmark = "location.became_landmark"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has already happened; the host platform
// indexes them, the ledger never reads them back.
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string       { return e.EventID }
func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time  { return e.Timestamp }
func (e BaseEvent) GetVersion() int          { return e.Version }

// newBaseEvent stamps the common fields for a freshly raised event
func newBaseEvent(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}
