package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpadapter "tracking/internal/adapters/in/http"
	"tracking/internal/adapters/in/ws"
	"tracking/internal/adapters/out/authz"
	"tracking/internal/adapters/out/cache"
	"tracking/internal/adapters/out/oracle"
	"tracking/internal/adapters/out/postgres"
	"tracking/internal/core/application/realtime"
	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
	"tracking/internal/jobs"
	"tracking/internal/pkg/keylock"
	"tracking/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	memoryCacheCleanupInterval = time.Minute
	redisPingTimeout           = 2 * time.Second
)

type CompositionRoot struct {
	configs Config
	logger  *slog.Logger

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	metrics     *metrics.Metrics
	cache       *queries.ReadModelCache
	redisClient *redis.Client
	predictor   *services.ETAPredictor
	authorizer  ports.Authorizer
	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster
	locks       *keylock.KeyedMutex
}

// NewCompositionRoot builds the long-lived collaborators shared by every handler.
// ctx bounds background workers such as the in-process cache janitor.
func NewCompositionRoot(ctx context.Context, configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		configs:    configs,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    metrics.New(),
		authorizer: authz.NewRoleAuthorizer(),
		registry:   realtime.NewRegistry(),
		locks:      &keylock.KeyedMutex{},
	}

	if err := root.initCache(ctx); err != nil {
		return nil, err
	}
	if err := root.initPredictor(); err != nil {
		return nil, err
	}

	root.broadcaster = realtime.NewBroadcaster(root.registry, realtime.BroadcasterConfig{
		MailboxSize: configs.SubscriberBuffer,
	}, logger, root.metrics)

	return root, nil
}

func (c *CompositionRoot) initCache(ctx context.Context) error {
	if c.configs.RedisURL == "" {
		c.logger.Info("REDIS_URL is not set, using the in-process cache")
		c.cache = queries.NewReadModelCache(cache.NewMemoryCache(ctx, memoryCacheCleanupInterval, c.metrics))
		return nil
	}

	client, err := cache.NewRedisClient(c.configs.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisCache := cache.NewRedisCache(client, c.logger, c.metrics)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err = redisCache.Ping(pingCtx); err != nil {
		// reads fall through to postgres until redis is back
		c.logger.Warn("redis is unreachable", "error", err)
	}

	c.redisClient = client
	c.cache = queries.NewReadModelCache(redisCache)
	return nil
}

func (c *CompositionRoot) initPredictor() error {
	config := services.PredictorConfig{
		InitialTimeout: c.configs.ETAInitialTimeout,
		UpdateTimeout:  c.configs.ETAUpdateTimeout,
	}

	if c.configs.ETAOracleURL == "" {
		c.logger.Warn("ETA_ORACLE_URL is not set, every estimate uses the fallback formula")
		c.predictor = services.NewETAPredictor(nil, config, c.logger, c.metrics)
		return nil
	}

	client, err := oracle.NewClient(c.configs.ETAOracleURL, nil)
	if err != nil {
		return fmt.Errorf("create eta oracle client: %w", err)
	}
	c.predictor = services.NewETAPredictor(client, config, c.logger, c.metrics)
	return nil
}

func (c *CompositionRoot) shipmentUoWFactory() commands.ShipmentUoWFactory {
	return FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.shipmentUoWFactory(), c.predictor, c.cache, c.logger)
}

func (c *CompositionRoot) CreateTransitionStatusCommandHandler() commands.TransitionStatusCommandHandler {
	return commands.NewTransitionStatusCommandHandler(
		c.shipmentUoWFactory(), c.authorizer, c.cache, c.broadcaster, c.locks, c.logger)
}

func (c *CompositionRoot) CreateUpdateLocationCommandHandler() commands.UpdateLocationCommandHandler {
	return commands.NewUpdateLocationCommandHandler(
		c.shipmentUoWFactory(), c.predictor, c.authorizer, c.cache, c.broadcaster, c.locks, c.logger)
}

func (c *CompositionRoot) CreateAssignAgentCommandHandler() commands.AssignAgentCommandHandler {
	return commands.NewAssignAgentCommandHandler(
		c.shipmentUoWFactory(), c.authorizer, c.cache, c.broadcaster, c.locks, c.logger)
}

func (c *CompositionRoot) CreateGetTrackingSnapshotQueryHandler() queries.GetTrackingSnapshotQueryHandler {
	return queries.NewGetTrackingSnapshotQueryHandler(c.gormDB, c.cache)
}

func (c *CompositionRoot) CreateGetAnalyticsOverviewQueryHandler() queries.GetAnalyticsOverviewQueryHandler {
	return queries.NewGetAnalyticsOverviewQueryHandler(c.gormDB, c.cache)
}

func (c *CompositionRoot) CreateGetShipmentsPerDayQueryHandler() queries.GetShipmentsPerDayQueryHandler {
	return queries.NewGetShipmentsPerDayQueryHandler(c.gormDB, c.cache)
}

func (c *CompositionRoot) CreateHTTPServer() (*httpadapter.Server, error) {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateShipment:    c.CreateCreateShipmentCommandHandler(),
		TransitionStatus:  c.CreateTransitionStatusCommandHandler(),
		UpdateLocation:    c.CreateUpdateLocationCommandHandler(),
		AssignAgent:       c.CreateAssignAgentCommandHandler(),
		TrackingSnapshot:  c.CreateGetTrackingSnapshotQueryHandler(),
		AnalyticsOverview: c.CreateGetAnalyticsOverviewQueryHandler(),
		ShipmentsPerDay:   c.CreateGetShipmentsPerDayQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateWebsocketHandler() *ws.Handler {
	return ws.NewHandler(c.broadcaster, ws.Config{}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateGetAnalyticsOverviewQueryHandler(),
		c.configs.AnalyticsRefreshSchedule,
		c.registry,
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

// Close stops the broadcaster writers and releases external connections.
func (c *CompositionRoot) Close() {
	c.broadcaster.Stop()

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Warn("closing redis client", "error", err)
		}
	}
	if sqlDB, err := c.gormDB.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			c.logger.Warn("closing database", "error", err)
		}
	}
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}
