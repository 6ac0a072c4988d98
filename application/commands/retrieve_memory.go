package commands

import (
	"errors"
	"time"
)

// RetrieveMemoryCommand requests the full record of one memory. Retrieval is
// a state-mutating operation because a non-owner read credits the owner's
// reputation, so it goes through the command path, not the query path.
type RetrieveMemoryCommand struct {
	MemoryID  string `json:"memory_id" validate:"required"`
	Requester string `json:"requester" validate:"required"`

	Result *MemoryProjection `json:"-"`
}

// MemoryProjection is the read-only view returned to callers. It never
// carries the inheritance address list or internal indexes.
type MemoryProjection struct {
	MemoryID   string    `json:"memory_id"`
	Owner      string    `json:"owner"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UnlockTime time.Time `json:"unlock_time"`
	Latitude   int64     `json:"latitude"`
	Longitude  int64     `json:"longitude"`
	MemoryType string    `json:"memory_type"`
	Likes      int64     `json:"likes"`
}

// Validate validates the command
func (cmd *RetrieveMemoryCommand) Validate() error {
	if cmd.MemoryID == "" {
		return errors.New("memory ID is required")
	}
	if cmd.Requester == "" {
		return errors.New("requester is required")
	}
	return nil
}
