package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylane-backend/domain/core/valueobjects"
	"memorylane-backend/domain/events"
	pkgerrors "memorylane-backend/pkg/errors"
)

func mustContent(t *testing.T, payload string) valueobjects.EncryptedContent {
	t.Helper()
	content, err := valueobjects.NewEncryptedContent(payload)
	require.NoError(t, err)
	return content
}

func mustCoordinates(t *testing.T, lat, lon int64) valueobjects.Coordinates {
	t.Helper()
	coords, err := valueobjects.NewCoordinates(lat, lon)
	require.NoError(t, err)
	return coords
}

func TestNewMemory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	content := mustContent(t, "opaque-payload")
	coords := mustCoordinates(t, 40_712800, -74_006000)

	tests := []struct {
		name        string
		owner       string
		unlockTime  time.Time
		inheritance []string
		memoryType  string
		wantErr     func(error) bool
	}{
		{
			name:       "valid memory",
			owner:      "alice",
			unlockTime: now.Add(time.Hour),
		},
		{
			name:       "empty owner",
			owner:      "",
			unlockTime: now.Add(time.Hour),
			wantErr:    pkgerrors.IsInvalidInput,
		},
		{
			name:       "unlock time in the past",
			owner:      "alice",
			unlockTime: now.Add(-time.Second),
			wantErr:    pkgerrors.IsInvalidSchedule,
		},
		{
			name:       "unlock time exactly now",
			owner:      "alice",
			unlockTime: now,
			wantErr:    pkgerrors.IsInvalidSchedule,
		},
		{
			name:        "inheritance list over limit",
			owner:       "alice",
			unlockTime:  now.Add(time.Hour),
			inheritance: make([]string, 33),
			wantErr:     pkgerrors.IsInvalidInput,
		},
		{
			name:       "memory type over limit",
			owner:      "alice",
			unlockTime: now.Add(time.Hour),
			memoryType: string(make([]byte, 65)),
			wantErr:    pkgerrors.IsInvalidInput,
		},
		{
			name:        "duplicate inheritance addresses allowed",
			owner:       "alice",
			unlockTime:  now.Add(time.Hour),
			inheritance: []string{"bob", "bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memory, err := NewMemory(tt.owner, content, coords, tt.unlockTime,
				tt.inheritance, false, tt.memoryType, now, 0)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error kind: %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.owner, memory.Owner())
			assert.Equal(t, now, memory.CreatedAt())
			assert.Equal(t, int64(0), memory.Likes())
			assert.False(t, memory.ID().IsZero())
		})
	}
}

func TestNewMemory_EmptyContent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coords := mustCoordinates(t, 0, 0)

	_, err := NewMemory("alice", valueobjects.EncryptedContent{}, coords,
		now.Add(time.Hour), nil, false, "", now, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidInput(err))
}

func TestNewMemory_RaisesStoredEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memory, err := NewMemory("alice", mustContent(t, "payload"),
		mustCoordinates(t, 1_000000, 2_000000), now.Add(time.Hour), nil, true, "letter", now, 3)
	require.NoError(t, err)

	uncommitted := memory.GetUncommittedEvents()
	require.Len(t, uncommitted, 1)
	assert.Equal(t, events.TypeMemoryStored, uncommitted[0].GetEventType())
	assert.Equal(t, memory.ID().String(), uncommitted[0].GetAggregateID())

	memory.MarkEventsAsCommitted()
	assert.Empty(t, memory.GetUncommittedEvents())
}

func TestMemory_RecordAccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memory, err := NewMemory("alice", mustContent(t, "payload"),
		mustCoordinates(t, 0, 0), now.Add(time.Hour), nil, true, "", now, 0)
	require.NoError(t, err)
	memory.MarkEventsAsCommitted()

	memory.RecordAccess("bob", now.Add(2*time.Hour))

	uncommitted := memory.GetUncommittedEvents()
	require.Len(t, uncommitted, 1)
	assert.Equal(t, events.TypeMemoryUnlocked, uncommitted[0].GetEventType())
	assert.Equal(t, memory.ID().String(), uncommitted[0].GetAggregateID())
}

func TestMemory_Like(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newMemory := func(t *testing.T, isPublic bool) *Memory {
		memory, err := NewMemory("alice", mustContent(t, "payload"),
			mustCoordinates(t, 0, 0), now.Add(time.Hour), nil, isPublic, "", now, 0)
		require.NoError(t, err)
		memory.MarkEventsAsCommitted()
		return memory
	}

	t.Run("public memory accepts likes", func(t *testing.T) {
		memory := newMemory(t, true)

		require.NoError(t, memory.Like("bob", now))
		assert.Equal(t, int64(1), memory.Likes())

		uncommitted := memory.GetUncommittedEvents()
		require.Len(t, uncommitted, 1)
		assert.Equal(t, events.TypeMemoryLiked, uncommitted[0].GetEventType())
	})

	t.Run("private memory rejects likes", func(t *testing.T) {
		memory := newMemory(t, false)

		err := memory.Like("bob", now)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidOperation(err))
		assert.Equal(t, int64(0), memory.Likes())
		assert.Empty(t, memory.GetUncommittedEvents())
	})

	t.Run("owner cannot like own memory", func(t *testing.T) {
		memory := newMemory(t, true)

		err := memory.Like("alice", now)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidOperation(err))
		assert.Equal(t, int64(0), memory.Likes())
	})

	t.Run("repeat likes from the same identity each count", func(t *testing.T) {
		memory := newMemory(t, true)

		require.NoError(t, memory.Like("bob", now))
		require.NoError(t, memory.Like("bob", now))
		assert.Equal(t, int64(2), memory.Likes())
	})
}

func TestReconstructMemory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coords := mustCoordinates(t, 1_000000, 2_000000)
	id := valueobjects.DeriveMemoryID("alice", coords, now, 0)

	memory, err := ReconstructMemory(id, "alice", mustContent(t, "payload"), coords,
		now, now.Add(time.Hour), []string{"bob"}, true, 5, "letter")
	require.NoError(t, err)

	assert.Equal(t, id.String(), memory.ID().String())
	assert.Equal(t, int64(5), memory.Likes())
	assert.Equal(t, []string{"bob"}, memory.InheritanceAddresses())
	// Reconstruction raises no events
	assert.Empty(t, memory.GetUncommittedEvents())
}

func TestMemory_InheritanceAddressesAreCopied(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	input := []string{"bob", "carol"}

	memory, err := NewMemory("alice", mustContent(t, "payload"),
		mustCoordinates(t, 0, 0), now.Add(time.Hour), input, false, "", now, 0)
	require.NoError(t, err)

	// Mutating the caller's slice or the returned slice must not leak inside
	input[0] = "mallory"
	returned := memory.InheritanceAddresses()
	returned[1] = "mallory"

	assert.Equal(t, []string{"bob", "carol"}, memory.InheritanceAddresses())
}
