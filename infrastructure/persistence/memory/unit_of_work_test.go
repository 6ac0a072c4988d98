package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"
)

func buildMemory(t *testing.T, owner string, sequence uint64) *entities.Memory {
	t.Helper()

	content, err := valueobjects.NewEncryptedContent("payload")
	require.NoError(t, err)
	coords, err := valueobjects.NewCoordinates(1_000000, 2_000000)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memory, err := entities.NewMemory(owner, content, coords, now.Add(time.Hour),
		nil, false, "", now, sequence)
	require.NoError(t, err)
	return memory
}

func TestUnitOfWork_CommitAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	require.NoError(t, uow.Begin(ctx))

	memory := buildMemory(t, "alice", 0)
	location := entities.NewLocation(memory.Coordinates())
	location.RecordMemory(memory.CreatedAt())

	require.NoError(t, uow.MemoryRepository().Save(ctx, memory))
	require.NoError(t, uow.LocationRepository().Save(ctx, location))
	require.NoError(t, uow.ReputationRepository().Credit(ctx, "alice", 10))

	// Nothing is visible before commit
	_, err := store.GetByID(ctx, memory.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	balance, _ := store.GetReputationBalance(ctx, "alice")
	assert.Equal(t, int64(0), balance)

	require.NoError(t, uow.Commit(ctx))

	// Everything lands together
	stored, err := store.GetByID(ctx, memory.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner())

	storedLocation, err := store.GetLocationByCoordinates(ctx, memory.Coordinates())
	require.NoError(t, err)
	assert.Equal(t, int64(1), storedLocation.MemoryCount())

	balance, _ = store.GetReputationBalance(ctx, "alice")
	assert.Equal(t, int64(10), balance)

	total, _ := store.TotalCount(ctx)
	assert.Equal(t, uint64(1), total)
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	require.NoError(t, uow.Begin(ctx))

	memory := buildMemory(t, "alice", 0)
	require.NoError(t, uow.MemoryRepository().Save(ctx, memory))
	require.NoError(t, uow.ReputationRepository().Credit(ctx, "alice", 10))

	require.NoError(t, uow.Rollback())

	_, err := store.GetByID(ctx, memory.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	balance, _ := store.GetReputationBalance(ctx, "alice")
	assert.Equal(t, int64(0), balance)

	total, _ := store.TotalCount(ctx)
	assert.Equal(t, uint64(0), total)
}

func TestUnitOfWork_RollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	require.NoError(t, uow.Begin(ctx))
	memory := buildMemory(t, "alice", 0)
	require.NoError(t, uow.MemoryRepository().Save(ctx, memory))
	require.NoError(t, uow.Commit(ctx))

	// The deferred rollback pattern in handlers runs after commit
	require.NoError(t, uow.Rollback())

	_, err := store.GetByID(ctx, memory.ID())
	assert.NoError(t, err)
}

func TestUnitOfWork_ReadsSeeStagedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	require.NoError(t, uow.Begin(ctx))

	memory := buildMemory(t, "alice", 0)
	require.NoError(t, uow.MemoryRepository().Save(ctx, memory))

	// Within the transaction the staged memory is readable
	staged, err := uow.MemoryRepository().GetByID(ctx, memory.ID())
	require.NoError(t, err)
	assert.Equal(t, memory.ID().String(), staged.ID().String())

	// The staged write also advances the sequence view
	total, err := uow.MemoryRepository().TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)

	// Staged reputation credit is reflected in the transactional balance
	require.NoError(t, uow.ReputationRepository().Credit(ctx, "alice", 10))
	balance, err := uow.ReputationRepository().GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	require.NoError(t, uow.Rollback())
}

func TestUnitOfWork_WritesRequireActiveTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	memory := buildMemory(t, "alice", 0)
	assert.Error(t, uow.MemoryRepository().Save(ctx, memory))
	assert.Error(t, uow.ReputationRepository().Credit(ctx, "alice", 10))
	assert.Error(t, uow.Commit(ctx))
}

func TestUnitOfWork_BeginTwiceFails(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(NewLedgerStore())

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
}

func TestUnitOfWork_SequentialTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	uow := NewUnitOfWork(store)

	for i := uint64(0); i < 3; i++ {
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.MemoryRepository().Save(ctx, buildMemory(t, "alice", i)))
		require.NoError(t, uow.Commit(ctx))
	}

	total, _ := store.TotalCount(ctx)
	assert.Equal(t, uint64(3), total)

	memories, err := store.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, memories, 3)
}

func TestLedgerStore_NegativeCreditRejectedInTransaction(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(NewLedgerStore())

	require.NoError(t, uow.Begin(ctx))
	err := uow.ReputationRepository().Credit(ctx, "alice", -1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidInput(err))
}
