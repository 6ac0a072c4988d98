package entities

import (
	"time"

	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/valueobjects"
	"memorylane-backend/domain/events"
	pkgerrors "memorylane-backend/pkg/errors"
)

// Location is the aggregate tracking activity at one exact coordinate pair.
// The landmark flag is a one-way latch: once set it never clears, and the
// LocationBecameLandmark event is raised exactly once, on the transition.
type Location struct {
	id              valueobjects.LocationID
	coordinates     valueobjects.Coordinates
	memoryCount     int64
	isLandmark      bool
	communityRating int64

	events []events.DomainEvent
}

// NewLocation creates a fresh aggregate for a coordinate pair with no activity yet
func NewLocation(coordinates valueobjects.Coordinates) *Location {
	return &Location{
		id:          valueobjects.DeriveLocationID(coordinates),
		coordinates: coordinates,
		events:      []events.DomainEvent{},
	}
}

// ReconstructLocation reconstructs a location from repository data with preserved state
func ReconstructLocation(
	id valueobjects.LocationID,
	coordinates valueobjects.Coordinates,
	memoryCount int64,
	isLandmark bool,
	communityRating int64,
) (*Location, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidInputError("location ID cannot be empty")
	}
	if memoryCount < 0 {
		return nil, pkgerrors.NewInvalidInputError("memory count cannot be negative")
	}

	return &Location{
		id:              id,
		coordinates:     coordinates,
		memoryCount:     memoryCount,
		isLandmark:      isLandmark,
		communityRating: communityRating,
		events:          []events.DomainEvent{},
	}, nil
}

// ID returns the location's deterministic identifier
func (l *Location) ID() valueobjects.LocationID {
	return l.id
}

// Coordinates returns the exact coordinate pair this aggregate tracks
func (l *Location) Coordinates() valueobjects.Coordinates {
	return l.coordinates
}

// MemoryCount returns how many memories are anchored here
func (l *Location) MemoryCount() int64 {
	return l.memoryCount
}

// IsLandmark reports whether this location has crossed the landmark threshold
func (l *Location) IsLandmark() bool {
	return l.isLandmark
}

// CommunityRating returns the accumulated rating for this location
func (l *Location) CommunityRating() int64 {
	return l.communityRating
}

// RecordMemory counts one more memory anchored at this location and applies
// the landmark latch. Returns true only on the single call that crosses the
// threshold.
func (l *Location) RecordMemory(now time.Time) bool {
	return l.RecordMemoryWithConfig(now, config.DefaultDomainConfig())
}

// RecordMemoryWithConfig counts a memory using the given configuration
func (l *Location) RecordMemoryWithConfig(now time.Time, cfg *config.DomainConfig) bool {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	l.memoryCount++

	if l.isLandmark || l.memoryCount < int64(cfg.LandmarkThreshold) {
		return false
	}

	l.isLandmark = true
	l.addEvent(events.NewLocationBecameLandmark(
		l.id.String(),
		l.coordinates.Latitude(),
		l.coordinates.Longitude(),
		l.memoryCount,
		now,
	))
	return true
}

// GetUncommittedEvents returns all uncommitted domain events
func (l *Location) GetUncommittedEvents() []events.DomainEvent {
	return l.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (l *Location) MarkEventsAsCommitted() {
	l.events = []events.DomainEvent{}
}

func (l *Location) addEvent(event events.DomainEvent) {
	l.events = append(l.events, event)
}
