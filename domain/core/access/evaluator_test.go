package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
)

func buildMemory(t *testing.T, owner string, isPublic bool, unlockTime time.Time, inheritance []string) *entities.Memory {
	t.Helper()

	content, err := valueobjects.NewEncryptedContent("payload")
	require.NoError(t, err)
	coords, err := valueobjects.NewCoordinates(0, 0)
	require.NoError(t, err)

	created := unlockTime.Add(-24 * time.Hour)
	memory, err := entities.NewMemory(owner, content, coords, unlockTime,
		inheritance, isPublic, "", created, 0)
	require.NoError(t, err)
	return memory
}

func TestCanAccess(t *testing.T) {
	unlockTime := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	beforeUnlock := unlockTime.Add(-time.Hour)
	afterUnlock := unlockTime.Add(time.Hour)

	tests := []struct {
		name        string
		owner       string
		isPublic    bool
		inheritance []string
		requester   string
		now         time.Time
		want        bool
	}{
		{
			name:      "owner always has access",
			owner:     "alice",
			requester: "alice",
			now:       beforeUnlock,
			want:      true,
		},
		{
			name:      "public grants anyone access before unlock",
			owner:     "alice",
			isPublic:  true,
			requester: "stranger",
			now:       beforeUnlock,
			want:      true,
		},
		{
			name:      "stranger denied before unlock",
			owner:     "alice",
			requester: "stranger",
			now:       beforeUnlock,
			want:      false,
		},
		{
			name:      "everyone may read after unlock",
			owner:     "alice",
			requester: "stranger",
			now:       afterUnlock,
			want:      true,
		},
		{
			name:      "unlock boundary is inclusive",
			owner:     "alice",
			requester: "stranger",
			now:       unlockTime,
			want:      true,
		},
		{
			name:        "inheritance address reads before unlock",
			owner:       "alice",
			inheritance: []string{"bob", "carol"},
			requester:   "carol",
			now:         beforeUnlock,
			want:        true,
		},
		{
			name:        "non-listed identity denied before unlock",
			owner:       "alice",
			inheritance: []string{"bob"},
			requester:   "carol",
			now:         beforeUnlock,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memory := buildMemory(t, tt.owner, tt.isPublic, unlockTime, tt.inheritance)
			assert.Equal(t, tt.want, CanAccess(memory, tt.requester, tt.now))
		})
	}
}

func TestCanAccess_NilMemory(t *testing.T) {
	assert.False(t, CanAccess(nil, "anyone", time.Now()))
}

func TestCanAccess_MonotonicInTime(t *testing.T) {
	// Capabilities are never revoked; once a requester can read, later
	// evaluations stay true
	unlockTime := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	memory := buildMemory(t, "alice", false, unlockTime, nil)

	assert.False(t, CanAccess(memory, "stranger", unlockTime.Add(-time.Minute)))
	assert.True(t, CanAccess(memory, "stranger", unlockTime))
	assert.True(t, CanAccess(memory, "stranger", unlockTime.Add(365*24*time.Hour)))
}
