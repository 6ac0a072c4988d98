package valueobjects

import (
	pkgerrors "memorylane-backend/pkg/errors"
)

// CoordinatePrecision is the fixed-point scale for degrees: 6 decimal places.
// All coordinates cross the API boundary already scaled, so the ledger never
// touches floating point and every replica derives identical state.
const CoordinatePrecision int64 = 1_000_000

const (
	maxScaledLatitude  int64 = 90 * CoordinatePrecision
	maxScaledLongitude int64 = 180 * CoordinatePrecision
)

// Coordinates is a value object for a fixed-point geographic position
type Coordinates struct {
	latitude  int64
	longitude int64
}

// NewCoordinates creates coordinates from scaled fixed-point degrees
func NewCoordinates(latitude, longitude int64) (Coordinates, error) {
	if latitude < -maxScaledLatitude || latitude > maxScaledLatitude {
		return Coordinates{}, pkgerrors.NewInvalidInputError("latitude out of range")
	}
	if longitude < -maxScaledLongitude || longitude > maxScaledLongitude {
		return Coordinates{}, pkgerrors.NewInvalidInputError("longitude out of range")
	}
	return Coordinates{latitude: latitude, longitude: longitude}, nil
}

// Latitude returns the scaled latitude
func (c Coordinates) Latitude() int64 {
	return c.latitude
}

// Longitude returns the scaled longitude
func (c Coordinates) Longitude() int64 {
	return c.longitude
}

// Equals checks if two coordinate pairs are identical
func (c Coordinates) Equals(other Coordinates) bool {
	return c.latitude == other.latitude && c.longitude == other.longitude
}

// SquaredDistanceTo returns the squared planar distance to other, in squared
// scaled-degree units. This is a small-radius approximation: longitude is not
// corrected for latitude, so it degrades near the poles and across the
// antimeridian. It is exact arithmetic, which is what the ledger needs.
func (c Coordinates) SquaredDistanceTo(other Coordinates) uint64 {
	dLat := c.latitude - other.latitude
	dLon := c.longitude - other.longitude
	// |dLat| <= 1.8e8 and |dLon| <= 3.6e8, so the sum of squares fits uint64
	return uint64(dLat*dLat) + uint64(dLon*dLon)
}

// maxRadiusUnits caps the scaled radius so its square stays within uint64.
// 2^31 scaled units is roughly 238,000 km, far beyond any distance on earth.
const maxRadiusUnits int64 = 1 << 31

// SquaredRadiusUnits converts a radius in kilometers into squared scaled-degree
// units using the flat 111 km-per-degree approximation.
func SquaredRadiusUnits(radiusKm int64, kmPerDegree int64) uint64 {
	if radiusKm < 0 {
		return 0
	}
	units := radiusKm * CoordinatePrecision / kmPerDegree
	if units > maxRadiusUnits {
		units = maxRadiusUnits
	}
	return uint64(units) * uint64(units)
}
