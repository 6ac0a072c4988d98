//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"memorylane-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideClock,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMemoryRepository,
	ProvideLocationRepository,
	ProvideReputationRepository,
	ProvideUnitOfWork,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideCommandBus,
	ProvideQueryBus,
	NewInMemoryCache,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
