package queries

import "errors"

// ExploreLocationQuery is a geographic range search around a center point.
// Coordinates arrive in scaled fixed-point degrees; the radius in whole
// kilometers. Results are filtered through the access predicate for the
// requester, so two requesters may see different subsets.
type ExploreLocationQuery struct {
	Latitude  int64
	Longitude int64
	RadiusKm  int64
	Requester string
}

// Validate validates the ExploreLocationQuery
func (q ExploreLocationQuery) Validate() error {
	if q.Requester == "" {
		return errors.New("requester is required")
	}
	if q.RadiusKm < 0 {
		return errors.New("radius cannot be negative")
	}
	return nil
}

// ExploreLocationResult is the ordered list of visible memory ids within
// range. Order is global creation order; the computation is fresh on every
// call, there is no stored cursor.
type ExploreLocationResult struct {
	MemoryIDs []string `json:"memory_ids"`
	Count     int      `json:"count"`
}
