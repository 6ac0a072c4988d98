package valueobjects

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// MemoryID is a value object for the content-derived memory identifier.
// The id is a pure function of the creation inputs plus the global sequence
// number, so every replica derives the same id and two creations by the same
// owner at the same coordinates in the same logical instant still differ.
type MemoryID struct {
	value string
}

// DeriveMemoryID computes the deterministic identifier for a new memory
func DeriveMemoryID(owner string, coords Coordinates, createdAt time.Time, sequence uint64) MemoryID {
	h := sha256.New()
	h.Write([]byte(owner))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(coords.Latitude()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(coords.Longitude()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(createdAt.Unix()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], sequence)
	h.Write(buf[:])

	return MemoryID{value: hex.EncodeToString(h.Sum(nil))}
}

// NewMemoryIDFromString creates a MemoryID from an existing string
func NewMemoryIDFromString(id string) (MemoryID, error) {
	if id == "" {
		return MemoryID{}, errors.New("memory ID cannot be empty")
	}
	if len(id) != sha256.Size*2 {
		return MemoryID{}, errors.New("memory ID must be a 64 character hex digest")
	}
	if _, err := hex.DecodeString(id); err != nil {
		return MemoryID{}, errors.New("memory ID must be hex encoded")
	}
	return MemoryID{value: id}, nil
}

// String returns the string representation of the MemoryID
func (id MemoryID) String() string {
	return id.value
}

// Equals checks if two MemoryIDs are equal
func (id MemoryID) Equals(other MemoryID) bool {
	return id.value == other.value
}

// IsZero checks if the MemoryID is the zero value
func (id MemoryID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id MemoryID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *MemoryID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("MemoryID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
