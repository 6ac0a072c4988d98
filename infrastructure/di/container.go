package di

import (
	"context"

	"memorylane-backend/application/commands/bus"
	"memorylane-backend/application/ports"
	querybus "memorylane-backend/application/queries/bus"
	domainconfig "memorylane-backend/domain/config"
	"memorylane-backend/domain/events"
	"memorylane-backend/infrastructure/config"
	"memorylane-backend/infrastructure/messaging"
	"memorylane-backend/pkg/observability"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	DomainConfig   *domainconfig.DomainConfig
	Logger         *zap.Logger
	Clock          ports.Clock
	MemoryRepo     ports.MemoryRepository
	LocationRepo   ports.LocationRepository
	ReputationRepo ports.ReputationRepository
	EventBus       ports.EventBus
	UnitOfWork     ports.UnitOfWork
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Cache          ports.Cache
	Metrics        *observability.Metrics
}

// InitializeDevelopmentContainer wires the container against the in-process
// store and event bus. No AWS credentials are needed; everything lives in
// memory and vanishes on restart.
func InitializeDevelopmentContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	domainCfg := ProvideDomainConfig()
	clock := ProvideClock()
	metrics := observability.NewMetrics("MemoryLane/development", nil)

	store := ProvideLedgerStore()
	memoryRepo := store.MemoryRepository()
	locationRepo := store.LocationRepository()
	reputationRepo := store.ReputationRepository()
	uow := ProvideInMemoryUnitOfWork(store)

	eventBus := messaging.NewLocalEventBus(logger)
	metricsHandler := messaging.NewMetricsEventHandler(metrics)
	for _, eventType := range []string{
		events.TypeMemoryStored,
		events.TypeMemoryUnlocked,
		events.TypeMemoryLiked,
		events.TypeLocationBecameLandmark,
	} {
		if err := eventBus.Subscribe(eventType, metricsHandler); err != nil {
			return nil, err
		}
	}

	cache := NewInMemoryCache()
	publisher := ProvideEventPublisher(eventBus, cache)

	commandBus, err := ProvideCommandBus(uow, publisher, clock, domainCfg, logger)
	if err != nil {
		return nil, err
	}

	queryBus, err := ProvideQueryBus(memoryRepo, locationRepo, reputationRepo, cache, clock, domainCfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:         cfg,
		DomainConfig:   domainCfg,
		Logger:         logger,
		Clock:          clock,
		MemoryRepo:     memoryRepo,
		LocationRepo:   locationRepo,
		ReputationRepo: reputationRepo,
		EventBus:       eventBus,
		UnitOfWork:     uow,
		CommandBus:     commandBus,
		QueryBus:       queryBus,
		Cache:          cache,
		Metrics:        metrics,
	}, nil
}
