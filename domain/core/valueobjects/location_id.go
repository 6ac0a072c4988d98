package valueobjects

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// LocationID is a value object keying a location aggregate. It is derived
// from the exact coordinate pair alone, order sensitive, so identical
// coordinates from any caller collide into the same bucket.
type LocationID struct {
	value string
}

// DeriveLocationID computes the deterministic key for a coordinate pair
func DeriveLocationID(coords Coordinates) LocationID {
	h := sha256.New()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(coords.Latitude()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(coords.Longitude()))
	h.Write(buf[:])

	return LocationID{value: hex.EncodeToString(h.Sum(nil))}
}

// NewLocationIDFromString creates a LocationID from an existing string
func NewLocationIDFromString(id string) (LocationID, error) {
	if id == "" {
		return LocationID{}, errors.New("location ID cannot be empty")
	}
	if len(id) != sha256.Size*2 {
		return LocationID{}, errors.New("location ID must be a 64 character hex digest")
	}
	if _, err := hex.DecodeString(id); err != nil {
		return LocationID{}, errors.New("location ID must be hex encoded")
	}
	return LocationID{value: id}, nil
}

// String returns the string representation of the LocationID
func (id LocationID) String() string {
	return id.value
}

// Equals checks if two LocationIDs are equal
func (id LocationID) Equals(other LocationID) bool {
	return id.value == other.value
}

// IsZero checks if the LocationID is the zero value
func (id LocationID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id LocationID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *LocationID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("LocationID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
