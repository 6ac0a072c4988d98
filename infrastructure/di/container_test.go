package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/queries"
	"memorylane-backend/infrastructure/config"
)

func newDevelopmentContainer(t *testing.T) *Container {
	t.Helper()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	container, err := InitializeDevelopmentContainer(context.Background(), cfg)
	require.NoError(t, err)
	return container
}

func createMemoryAt(t *testing.T, container *Container, owner string, lat, lon int64) *commands.CreateMemoryCommand {
	t.Helper()

	cmd := &commands.CreateMemoryCommand{
		Owner:            owner,
		EncryptedContent: "opaque-payload",
		Latitude:         lat,
		Longitude:        lon,
		UnlockTime:       time.Now().Add(24 * time.Hour),
		IsPublic:         true,
	}
	require.NoError(t, container.CommandBus.Send(context.Background(), cmd))
	require.NotNil(t, cmd.Result)
	return cmd
}

func TestInitializeDevelopmentContainer(t *testing.T) {
	container := newDevelopmentContainer(t)

	require.NotNil(t, container.CommandBus)
	require.NotNil(t, container.QueryBus)
	require.NotNil(t, container.UnitOfWork)
	require.NotNil(t, container.Cache)
	require.NotNil(t, container.Metrics)

	// A command and a query run end to end through the wired buses
	cmd := createMemoryAt(t, container, "alice", 10_000000, 20_000000)
	assert.Len(t, cmd.Result.MemoryID, 64)

	result, err := container.QueryBus.Ask(context.Background(), queries.GetReputationQuery{Identity: "alice"})
	require.NoError(t, err)
	reputation, ok := result.(*queries.GetReputationResult)
	require.True(t, ok)
	assert.Equal(t, int64(10), reputation.Score)
}

func TestDevelopmentContainer_LandmarkCountSeesFreshLatch(t *testing.T) {
	container := newDevelopmentContainer(t)
	ctx := context.Background()

	// Warm the cached landmark total before any landmark exists
	result, err := container.QueryBus.Ask(ctx, queries.GetLandmarkCountQuery{})
	require.NoError(t, err)
	before, ok := result.(*queries.GetLandmarkCountResult)
	require.True(t, ok)
	assert.Equal(t, int64(0), before.Count)

	// The fifth memory at one coordinate pair latches the landmark
	var latched bool
	for i := 0; i < 5; i++ {
		cmd := createMemoryAt(t, container, "alice", 40_712800, -74_006000)
		latched = cmd.Result.BecameLandmark
	}
	require.True(t, latched)

	// The committed latch is visible immediately, not after a cache expiry
	result, err = container.QueryBus.Ask(ctx, queries.GetLandmarkCountQuery{})
	require.NoError(t, err)
	after, ok := result.(*queries.GetLandmarkCountResult)
	require.True(t, ok)
	assert.Equal(t, int64(1), after.Count)
}
