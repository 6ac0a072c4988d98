package queries

import (
	"errors"
	"time"
)

// GetMemoriesByOwnerQuery lists the memories an identity has created.
// Owners always pass the access predicate for their own records, so the
// listing includes locked and private memories.
type GetMemoriesByOwnerQuery struct {
	Owner string
}

// Validate validates the GetMemoriesByOwnerQuery
func (q GetMemoriesByOwnerQuery) Validate() error {
	if q.Owner == "" {
		return errors.New("owner is required")
	}
	return nil
}

// OwnedMemorySummary is one entry in an owner's listing. The encrypted
// payload is omitted; callers retrieve individual memories for content.
type OwnedMemorySummary struct {
	MemoryID   string    `json:"memory_id"`
	CreatedAt  time.Time `json:"created_at"`
	UnlockTime time.Time `json:"unlock_time"`
	Latitude   int64     `json:"latitude"`
	Longitude  int64     `json:"longitude"`
	MemoryType string    `json:"memory_type"`
	IsPublic   bool      `json:"is_public"`
	Likes      int64     `json:"likes"`
}

// GetMemoriesByOwnerResult carries the owner's memories in creation order
type GetMemoriesByOwnerResult struct {
	Owner    string               `json:"owner"`
	Memories []OwnedMemorySummary `json:"memories"`
}
