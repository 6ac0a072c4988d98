package queries

import "errors"

// GetUserMemoryCountQuery asks how many memories an identity has created
type GetUserMemoryCountQuery struct {
	Identity string
}

// Validate validates the GetUserMemoryCountQuery
func (q GetUserMemoryCountQuery) Validate() error {
	if q.Identity == "" {
		return errors.New("identity is required")
	}
	return nil
}

// GetUserMemoryCountResult carries the per-owner creation count
type GetUserMemoryCountResult struct {
	Identity string `json:"identity"`
	Count    int64  `json:"count"`
}

// GetLandmarkCountQuery asks for the total number of landmark locations
type GetLandmarkCountQuery struct{}

// Validate validates the GetLandmarkCountQuery
func (q GetLandmarkCountQuery) Validate() error {
	return nil
}

// GetLandmarkCountResult carries the landmark total
type GetLandmarkCountResult struct {
	Count int64 `json:"count"`
}

// GetLocationMemoryCountQuery asks how many memories are anchored at an
// exact coordinate pair
type GetLocationMemoryCountQuery struct {
	Latitude  int64
	Longitude int64
}

// Validate validates the GetLocationMemoryCountQuery
func (q GetLocationMemoryCountQuery) Validate() error {
	return nil
}

// GetLocationMemoryCountResult carries the aggregate for one coordinate
// pair; absent locations report a zero count and no landmark flag
type GetLocationMemoryCountResult struct {
	LocationID  string `json:"location_id,omitempty"`
	MemoryCount int64  `json:"memory_count"`
	IsLandmark  bool   `json:"is_landmark"`
}

// GetReputationQuery asks for an identity's reputation score
type GetReputationQuery struct {
	Identity string
}

// Validate validates the GetReputationQuery
func (q GetReputationQuery) Validate() error {
	if q.Identity == "" {
		return errors.New("identity is required")
	}
	return nil
}

// GetReputationResult carries the score, zero for unknown identities
type GetReputationResult struct {
	Identity string `json:"identity"`
	Score    int64  `json:"score"`
}
