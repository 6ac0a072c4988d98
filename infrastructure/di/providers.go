package di

import (
	"context"
	"fmt"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/commands/bus"
	commands_handlers "memorylane-backend/application/commands/handlers"
	"memorylane-backend/application/ports"
	"memorylane-backend/application/queries"
	querybus "memorylane-backend/application/queries/bus"
	queries_handlers "memorylane-backend/application/queries/handlers"
	domainconfig "memorylane-backend/domain/config"
	"memorylane-backend/domain/events"
	"memorylane-backend/infrastructure/config"
	"memorylane-backend/infrastructure/messaging/eventbridge"
	dynamodbstore "memorylane-backend/infrastructure/persistence/dynamodb"
	memorystore "memorylane-backend/infrastructure/persistence/memory"
	"memorylane-backend/pkg/observability"
	"memorylane-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig creates the domain rule configuration
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideClock creates the ledger clock
func ProvideClock() ports.Clock {
	return utils.NewMonotonicClock()
}

// ProvideMemoryRepository creates a memory repository
func ProvideMemoryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MemoryRepository {
	return dynamodbstore.NewMemoryRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,     // GSI1 for per-owner listings
		cfg.GSI2IndexName, // GSI2 for the global creation-order scan
		logger,
	)
}

// ProvideLocationRepository creates a location repository
func ProvideLocationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.LocationRepository {
	return dynamodbstore.NewLocationRepository(
		client,
		cfg.DynamoDBTable,
		cfg.GSI2IndexName,
		logger,
	)
}

// ProvideReputationRepository creates a reputation repository
func ProvideReputationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ReputationRepository {
	return dynamodbstore.NewReputationRepository(
		client,
		cfg.DynamoDBTable,
		logger,
	)
}

// ProvideUnitOfWork creates a unit of work for transactions
func ProvideUnitOfWork(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UnitOfWork {
	return dynamodbstore.NewUnitOfWork(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		cfg.GSI2IndexName,
		logger,
	)
}

// ProvideLedgerStore creates the in-process store used in development mode
func ProvideLedgerStore() *memorystore.LedgerStore {
	return memorystore.NewLedgerStore()
}

// ProvideInMemoryUnitOfWork creates a unit of work over the in-process store
func ProvideInMemoryUnitOfWork(store *memorystore.LedgerStore) ports.UnitOfWork {
	return memorystore.NewUnitOfWork(store)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideEventPublisher wraps the event bus so cached query results derived
// from an aggregate are dropped the moment that aggregate changes. Reads
// after a committed mutation then never see a stale total.
func ProvideEventPublisher(eventBus ports.EventBus, cache ports.Cache) ports.EventPublisher {
	return &cacheInvalidatingPublisher{next: eventBus, cache: cache}
}

type cacheInvalidatingPublisher struct {
	next  ports.EventPublisher
	cache ports.Cache
}

func (p *cacheInvalidatingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.invalidate(ctx, event)
	return p.next.Publish(ctx, event)
}

func (p *cacheInvalidatingPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		p.invalidate(ctx, event)
	}
	return p.next.PublishBatch(ctx, batch)
}

func (p *cacheInvalidatingPublisher) invalidate(ctx context.Context, event events.DomainEvent) {
	if event.GetEventType() == events.TypeLocationBecameLandmark {
		_ = p.cache.Delete(ctx, querybus.CacheKey(queries.GetLandmarkCountQuery{}))
	}
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("MemoryLane/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		client = nil
	}
	return observability.NewMetrics(namespace, client)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers.
// All mutating operations go through here; the bus serializes them so the
// ledger observes one writer at a time.
func ProvideCommandBus(
	uow ports.UnitOfWork,
	eventPublisher ports.EventPublisher,
	clock ports.Clock,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	createHandler := commands.NewCreateMemoryHandler(uow, eventPublisher, clock, domainCfg, logger)
	if err := commandBus.Register(&commands.CreateMemoryCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(*commands.CreateMemoryCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createHandler.Handle(ctx, createCmd)
			return err
		},
	}); err != nil {
		return nil, err
	}

	retrieveHandler := commands_handlers.NewRetrieveMemoryHandler(uow, eventPublisher, clock, domainCfg, logger)
	if err := commandBus.Register(&commands.RetrieveMemoryCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			retrieveCmd, ok := cmd.(*commands.RetrieveMemoryCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return retrieveHandler.Handle(ctx, retrieveCmd)
		},
	}); err != nil {
		return nil, err
	}

	likeHandler := commands_handlers.NewLikeMemoryHandler(uow, eventPublisher, clock, domainCfg, logger)
	if err := commandBus.Register(&commands.LikeMemoryCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			likeCmd, ok := cmd.(*commands.LikeMemoryCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return likeHandler.Handle(ctx, likeCmd)
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// busMetricsAdapter bridges the observability collector to the query bus
// metrics interface; the two packages declare their own Timer types
type busMetricsAdapter struct {
	metrics *observability.Metrics
}

func (a busMetricsAdapter) Increment(metric, label string) {
	a.metrics.Increment(metric, label)
}

func (a busMetricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.metrics.StartTimer(metric, label)
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	memoryRepo ports.MemoryRepository,
	locationRepo ports.LocationRepository,
	reputationRepo ports.ReputationRepository,
	cache ports.Cache,
	clock ports.Clock,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	metricsMiddleware := querybus.NewMetricsMiddleware(busMetricsAdapter{metrics: metrics})
	// Landmark totals change rarely; a short cache absorbs hot polling
	cachingMiddleware := querybus.NewCachingMiddleware(cache, 5)

	exploreHandler := queries_handlers.NewExploreLocationHandler(memoryRepo, clock, domainCfg, logger)
	if err := queryBus.Register(queries.ExploreLocationQuery{}, metricsMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			exploreQuery, ok := query.(queries.ExploreLocationQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return exploreHandler.Handle(ctx, exploreQuery)
		},
	})); err != nil {
		return nil, err
	}

	statsHandler := queries_handlers.NewStatsHandler(memoryRepo, locationRepo, reputationRepo, logger)

	if err := queryBus.Register(queries.GetUserMemoryCountQuery{}, metricsMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			countQuery, ok := query.(queries.GetUserMemoryCountQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.HandleUserMemoryCount(ctx, countQuery)
		},
	})); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.GetLandmarkCountQuery{}, metricsMiddleware.Wrap(cachingMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			landmarkQuery, ok := query.(queries.GetLandmarkCountQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.HandleLandmarkCount(ctx, landmarkQuery)
		},
	}))); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.GetLocationMemoryCountQuery{}, metricsMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			locationQuery, ok := query.(queries.GetLocationMemoryCountQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.HandleLocationMemoryCount(ctx, locationQuery)
		},
	})); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.GetReputationQuery{}, metricsMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			reputationQuery, ok := query.(queries.GetReputationQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.HandleReputation(ctx, reputationQuery)
		},
	})); err != nil {
		return nil, err
	}

	if err := queryBus.Register(queries.GetMemoriesByOwnerQuery{}, metricsMiddleware.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			ownerQuery, ok := query.(queries.GetMemoriesByOwnerQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.HandleMemoriesByOwner(ctx, ownerQuery)
		},
	})); err != nil {
		return nil, err
	}

	return queryBus, nil
}
