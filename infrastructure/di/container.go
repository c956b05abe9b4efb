// Package di wires the application together. The container is built
// by hand; the dependency graph is small enough that generated wiring
// would cost more than it saves.
package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memgate/application/ports"
	"memgate/application/services"
	"memgate/domain/graph"
	"memgate/domain/memory"
	"memgate/domain/swarm"
	"memgate/infrastructure/config"
	"memgate/infrastructure/health"
	"memgate/infrastructure/maintenance"
	weaviatestore "memgate/infrastructure/weaviate"
	"memgate/pkg/auth"
	"memgate/pkg/observability"
)

// Container holds every long-lived component of the service.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Cache  *memory.Cache
	Graph  *graph.Graph
	Trails *swarm.Tracker
	Smells *swarm.SmellMonitor

	Store      ports.VectorStore
	Health     *health.Monitor
	Scheduler  *maintenance.Scheduler
	AutoScaler *maintenance.AutoScaler
	Watchdog   *maintenance.Watchdog

	TokenValidator *auth.TokenValidator
	RateLimiter    *auth.IPRateLimiter

	Collections *services.CollectionService
	Documents   *services.DocumentService
}

// NewContainer builds the full dependency graph from configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics := observability.NewMetrics()

	cache := memory.NewCache(cfg.CacheMaxSize, cfg.CacheDefaultTTL)
	entityGraph := graph.New()
	trails := swarm.NewTracker(cfg.EvaporationRate)
	smells := swarm.NewSmellMonitor()

	store, err := weaviatestore.NewStore(weaviatestore.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}

	monitor := health.NewMonitor()

	var validator *auth.TokenValidator
	if cfg.JWTSecret != "" {
		validator, err = auth.NewTokenValidator(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("create token validator: %w", err)
		}
	} else if cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,

		Cache:  cache,
		Graph:  entityGraph,
		Trails: trails,
		Smells: smells,

		Store:      store,
		Health:     monitor,
		Scheduler:  maintenance.NewScheduler(logger),
		AutoScaler: maintenance.NewAutoScaler(),

		TokenValidator: validator,
		RateLimiter:    auth.NewIPRateLimiter(cfg.RequestsPerMinute),

		Collections: services.NewCollectionService(store, trails, monitor, logger),
		Documents:   services.NewDocumentService(store, cache, trails, smells, monitor, metrics, logger),
	}

	c.registerMaintenance()

	if cfg.DataPath != "" {
		watchdog, err := maintenance.NewWatchdog(cfg.DataPath, func(path string) {
			logger.Warn("data path changed externally, clearing caches",
				zap.String("path", path))
			cache.Clear("")
			cache.ClearAllProjects()
		}, logger)
		if err != nil {
			logger.Warn("failed to start data path watchdog", zap.Error(err))
		} else {
			c.Watchdog = watchdog
		}
	}

	return c, nil
}

// registerMaintenance wires the periodic upkeep tasks.
func (c *Container) registerMaintenance() {
	c.Scheduler.Register(maintenance.Task{
		Name:     "cache_cleanup",
		Interval: c.Config.CleanupInterval,
		Run: func(ctx context.Context) {
			removed := c.Cache.PurgeExpired()
			stats := c.Cache.Stats("")
			c.Logger.Info("cache cleanup finished",
				zap.Int("removed", removed),
				zap.Int("active", stats.ActiveEntries))
		},
	})

	c.Scheduler.Register(maintenance.Task{
		Name:     "health_check",
		Interval: c.Config.HealthLogInterval,
		Run: func(ctx context.Context) {
			alive := c.Store.Ping(ctx) == nil
			c.Health.SetStoreAlive(alive)

			report := c.Health.Report()
			if report.Status != health.StatusHealthy {
				c.Logger.Warn("service health degraded",
					zap.String("status", string(report.Status)),
					zap.Float64("error_rate", report.ErrorRate),
					zap.Bool("store_alive", report.StoreAlive))
			}

			graphStats := c.Graph.Statistics()
			c.Metrics.GraphEntities.Set(float64(graphStats.TotalEntities))
			c.Metrics.GraphRelationships.Set(float64(graphStats.TotalRelationships))
			c.Metrics.TrailsTracked.Set(float64(c.Trails.Count()))
		},
	})
}

// Start launches the background maintenance work.
func (c *Container) Start() {
	c.Scheduler.Start()
}

// Shutdown stops background work and flushes the logger.
func (c *Container) Shutdown() {
	c.Scheduler.Stop()
	if c.Watchdog != nil {
		if err := c.Watchdog.Stop(); err != nil {
			c.Logger.Warn("failed to stop watchdog", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}

// provideLogger builds a logger matching the configured environment
// and level.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}
