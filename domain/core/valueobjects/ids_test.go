package valueobjects

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMemoryID(t *testing.T) {
	coords, err := NewCoordinates(40_712800, -74_006000)
	require.NoError(t, err)
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		a := DeriveMemoryID("alice", coords, createdAt, 7)
		b := DeriveMemoryID("alice", coords, createdAt, 7)
		assert.True(t, a.Equals(b))
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("is a 64 character hex digest", func(t *testing.T) {
		id := DeriveMemoryID("alice", coords, createdAt, 7)
		assert.Len(t, id.String(), 64)
		assert.Equal(t, strings.ToLower(id.String()), id.String())
	})

	t.Run("sequence separates otherwise identical creations", func(t *testing.T) {
		a := DeriveMemoryID("alice", coords, createdAt, 7)
		b := DeriveMemoryID("alice", coords, createdAt, 8)
		assert.False(t, a.Equals(b))
	})

	t.Run("owner changes the id", func(t *testing.T) {
		a := DeriveMemoryID("alice", coords, createdAt, 7)
		b := DeriveMemoryID("bob", coords, createdAt, 7)
		assert.False(t, a.Equals(b))
	})

	t.Run("coordinates change the id", func(t *testing.T) {
		other, err := NewCoordinates(40_712800, -74_006001)
		require.NoError(t, err)
		a := DeriveMemoryID("alice", coords, createdAt, 7)
		b := DeriveMemoryID("alice", other, createdAt, 7)
		assert.False(t, a.Equals(b))
	})

	t.Run("sub-second timestamp differences do not change the id", func(t *testing.T) {
		a := DeriveMemoryID("alice", coords, createdAt, 7)
		b := DeriveMemoryID("alice", coords, createdAt.Add(500*time.Millisecond), 7)
		assert.True(t, a.Equals(b))
	})
}

func TestNewMemoryIDFromString(t *testing.T) {
	valid := DeriveMemoryID("alice", Coordinates{}, time.Unix(0, 0), 0).String()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid digest", input: valid, wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "abc123", wantErr: true},
		{name: "right length but not hex", input: strings.Repeat("z", 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewMemoryIDFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
			assert.False(t, id.IsZero())
		})
	}
}

func TestDeriveLocationID(t *testing.T) {
	coords, err := NewCoordinates(51_507400, -127800)
	require.NoError(t, err)

	t.Run("deterministic for identical coordinates", func(t *testing.T) {
		a := DeriveLocationID(coords)
		b := DeriveLocationID(coords)
		assert.True(t, a.Equals(b))
	})

	t.Run("order sensitive", func(t *testing.T) {
		swapped, err := NewCoordinates(-127800, 51_507400)
		require.NoError(t, err)
		assert.False(t, DeriveLocationID(coords).Equals(DeriveLocationID(swapped)))
	})

	t.Run("independent of who derives it", func(t *testing.T) {
		// The key is a function of the coordinate pair alone, so memories from
		// different owners at the same spot share one location aggregate
		same, err := NewCoordinates(51_507400, -127800)
		require.NoError(t, err)
		assert.True(t, DeriveLocationID(coords).Equals(DeriveLocationID(same)))
	})
}
