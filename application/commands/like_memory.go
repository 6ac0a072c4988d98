package commands

import (
	"errors"
)

// LikeMemoryCommand records a like on a public memory. There is no
// per-liker uniqueness guard; repeat likes from the same identity each
// count and each credit the owner.
type LikeMemoryCommand struct {
	MemoryID string `json:"memory_id" validate:"required"`
	Liker    string `json:"liker" validate:"required"`

	Result *LikeMemoryResult `json:"-"`
}

// LikeMemoryResult carries the updated like total
type LikeMemoryResult struct {
	MemoryID   string `json:"memory_id"`
	TotalLikes int64  `json:"total_likes"`
}

// Validate validates the command
func (cmd *LikeMemoryCommand) Validate() error {
	if cmd.MemoryID == "" {
		return errors.New("memory ID is required")
	}
	if cmd.Liker == "" {
		return errors.New("liker is required")
	}
	return nil
}
