package events

import (
	"time"
)

// MemoryStored is raised when a new memory is persisted
type MemoryStored struct {
	BaseEvent
	MemoryID   string    `json:"memory_id"`
	Owner      string    `json:"owner"`
	Latitude   int64     `json:"latitude"`
	Longitude  int64     `json:"longitude"`
	UnlockTime time.Time `json:"unlock_time"`
}

// NewMemoryStored creates a MemoryStored event
func NewMemoryStored(memoryID, owner string, latitude, longitude int64, unlockTime, timestamp time.Time) MemoryStored {
	return MemoryStored{
		BaseEvent:  newBaseEvent(memoryID, TypeMemoryStored, timestamp),
		MemoryID:   memoryID,
		Owner:      owner,
		Latitude:   latitude,
		Longitude:  longitude,
		UnlockTime: unlockTime,
	}
}

// MemoryUnlocked is raised when a memory is successfully retrieved
type MemoryUnlocked struct {
	BaseEvent
	MemoryID   string    `json:"memory_id"`
	Accessor   string    `json:"accessor"`
	AccessedAt time.Time `json:"accessed_at"`
}

// NewMemoryUnlocked creates a MemoryUnlocked event
func NewMemoryUnlocked(memoryID, accessor string, accessedAt time.Time) MemoryUnlocked {
	return MemoryUnlocked{
		BaseEvent:  newBaseEvent(memoryID, TypeMemoryUnlocked, accessedAt),
		MemoryID:   memoryID,
		Accessor:   accessor,
		AccessedAt: accessedAt,
	}
}

// MemoryLiked is raised when a public memory receives a like
type MemoryLiked struct {
	BaseEvent
	MemoryID   string `json:"memory_id"`
	Liker      string `json:"liker"`
	TotalLikes int64  `json:"total_likes"`
}

// NewMemoryLiked creates a MemoryLiked event
func NewMemoryLiked(memoryID, liker string, totalLikes int64, timestamp time.Time) MemoryLiked {
	return MemoryLiked{
		BaseEvent:  newBaseEvent(memoryID, TypeMemoryLiked, timestamp),
		MemoryID:   memoryID,
		Liker:      liker,
		TotalLikes: totalLikes,
	}
}

// LocationBecameLandmark is raised exactly once per location, at the moment
// its memory count first reaches the landmark threshold
type LocationBecameLandmark struct {
	BaseEvent
	LocationID  string `json:"location_id"`
	Latitude    int64  `json:"latitude"`
	Longitude   int64  `json:"longitude"`
	MemoryCount int64  `json:"memory_count"`
}

// NewLocationBecameLandmark creates a LocationBecameLandmark event
func NewLocationBecameLandmark(locationID string, latitude, longitude, memoryCount int64, timestamp time.Time) LocationBecameLandmark {
	return LocationBecameLandmark{
		BaseEvent:   newBaseEvent(locationID, TypeLocationBecameLandmark, timestamp),
		LocationID:  locationID,
		Latitude:    latitude,
		Longitude:   longitude,
		MemoryCount: memoryCount,
	}
}
