package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/queries"
	"memorylane-backend/domain/events"
	storemem "memorylane-backend/infrastructure/persistence/memory"
	pkgerrors "memorylane-backend/pkg/errors"
	"memorylane-backend/pkg/utils"
)

// nopPublisher discards events; query tests only care about committed state
type nopPublisher struct {
	mu sync.Mutex
}

func (p *nopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (p *nopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type queryFixture struct {
	store   *storemem.LedgerStore
	clock   *utils.ManualClock
	create  *commands.CreateMemoryHandler
	explore *ExploreLocationHandler
	stats   *StatsHandler
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()

	store := storemem.NewLedgerStore()
	uow := storemem.NewUnitOfWork(store)
	clock := utils.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()

	return &queryFixture{
		store:   store,
		clock:   clock,
		create:  commands.NewCreateMemoryHandler(uow, &nopPublisher{}, clock, nil, logger),
		explore: NewExploreLocationHandler(store.MemoryRepository(), clock, nil, logger),
		stats: NewStatsHandler(store.MemoryRepository(), store.LocationRepository(),
			store.ReputationRepository(), logger),
	}
}

func (f *queryFixture) seed(t *testing.T, owner string, lat, lon int64, isPublic bool) string {
	t.Helper()

	cmd := &commands.CreateMemoryCommand{
		Owner:            owner,
		EncryptedContent: "opaque-payload",
		Latitude:         lat,
		Longitude:        lon,
		UnlockTime:       f.clock.Now().Add(24 * time.Hour),
		IsPublic:         isPublic,
	}
	_, err := f.create.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return cmd.Result.MemoryID
}

func TestExploreLocationHandler_Handle_FiltersByRadius(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	// 111 km per degree: ~0.09 degrees = 90000 scaled units per 10 km
	atCenter := f.seed(t, "alice", 10_000000, 20_000000, true)
	nearby := f.seed(t, "alice", 10_050000, 20_000000, true) // ~5.5 km north
	faraway := f.seed(t, "alice", 11_000000, 20_000000, true) // ~111 km north

	result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
		Latitude:  10_000000,
		Longitude: 20_000000,
		RadiusKm:  10,
		Requester: "bob",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{atCenter, nearby}, result.MemoryIDs)
	assert.Equal(t, 2, result.Count)
	assert.NotContains(t, result.MemoryIDs, faraway)
}

func TestExploreLocationHandler_Handle_FiltersByAccess(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	visible := f.seed(t, "alice", 0, 0, true)
	hidden := f.seed(t, "alice", 0, 0, false)

	t.Run("stranger sees only the public memory", func(t *testing.T) {
		result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
			RadiusKm: 1, Requester: "stranger",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{visible}, result.MemoryIDs)
	})

	t.Run("owner sees both", func(t *testing.T) {
		result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
			RadiusKm: 1, Requester: "alice",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{visible, hidden}, result.MemoryIDs)
	})

	t.Run("unlock opens the hidden memory to everyone", func(t *testing.T) {
		f.clock.Advance(25 * time.Hour)
		result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
			RadiusKm: 1, Requester: "stranger",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{visible, hidden}, result.MemoryIDs)
	})
}

func TestExploreLocationHandler_Handle_CreationOrder(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	// Results come back in global creation order regardless of distance
	far := f.seed(t, "alice", 100000, 0, true)
	near := f.seed(t, "bob", 0, 0, true)

	result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
		RadiusKm: 100, Requester: "carol",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{far, near}, result.MemoryIDs)
}

func TestExploreLocationHandler_Handle_ZeroRadiusMatchesExactPoint(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	exact := f.seed(t, "alice", 5_000000, 5_000000, true)
	f.seed(t, "alice", 5_000001, 5_000000, true)

	result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
		Latitude:  5_000000,
		Longitude: 5_000000,
		RadiusKm:  0,
		Requester: "bob",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{exact}, result.MemoryIDs)
}

func TestExploreLocationHandler_Handle_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	t.Run("missing requester", func(t *testing.T) {
		_, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{RadiusKm: 1})
		assert.Error(t, err)
	})

	t.Run("invalid center", func(t *testing.T) {
		_, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
			Latitude: 91_000000, RadiusKm: 1, Requester: "bob",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidInput(err))
	})

	t.Run("radius over maximum", func(t *testing.T) {
		_, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
			RadiusKm: 20001, Requester: "bob",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidInput(err))
	})
}

func TestExploreLocationHandler_Handle_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t)

	result, err := f.explore.Handle(ctx, queries.ExploreLocationQuery{
		RadiusKm: 100, Requester: "bob",
	})

	require.NoError(t, err)
	assert.Empty(t, result.MemoryIDs)
	assert.Equal(t, 0, result.Count)
}
