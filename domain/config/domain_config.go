package config

// DomainConfig holds all configurable business rules and constraints.
// The ledger constants (precision, landmark threshold, reputation credits)
// must be identical for every deployment that shares a ledger, so the
// defaults here are the protocol values and tests pin them.
type DomainConfig struct {
	// Coordinate handling
	CoordinatePrecision int64 // scale factor for fixed-point degrees
	KmPerDegree         int64 // planar approximation used by radius queries

	// Landmark rules
	LandmarkThreshold int64 // memory count at which a location latches

	// Reputation credits
	CreationCredit int64 // credited to the owner on createMemory
	AccessCredit   int64 // credited to the owner when a non-owner retrieves
	LikeCredit     int64 // credited to the owner on likeMemory

	// Input constraints
	MaxContentBytes    int
	MaxInheritanceList int
	MaxMemoryTypeLen   int

	// Query limits (API surface only, not ledger semantics)
	MaxExploreRadiusKm int64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		CoordinatePrecision: 1_000_000,
		KmPerDegree:         111,

		LandmarkThreshold: 5,

		CreationCredit: 10,
		AccessCredit:   1,
		LikeCredit:     5,

		MaxContentBytes:    1 << 20, // 1 MiB of already-encrypted payload
		MaxInheritanceList: 32,
		MaxMemoryTypeLen:   64,

		MaxExploreRadiusKm: 20_000, // covers any two points on earth
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.CoordinatePrecision <= 0 || c.KmPerDegree <= 0 || c.LandmarkThreshold <= 0 {
		return errInvalidDomainConfig
	}
	return nil
}

var errInvalidDomainConfig = configError("domain config values must be positive")

type configError string

func (e configError) Error() string { return string(e) }
