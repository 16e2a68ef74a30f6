package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appidentity "github.com/opsboard/backend/internal/application/identity"
	appreq "github.com/opsboard/backend/internal/application/requisition"
	appsync "github.com/opsboard/backend/internal/application/sync"
	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/auth"
	"github.com/opsboard/backend/internal/infrastructure/cache"
	"github.com/opsboard/backend/internal/infrastructure/config"
	"github.com/opsboard/backend/internal/infrastructure/event"
	"github.com/opsboard/backend/internal/infrastructure/logger"
	"github.com/opsboard/backend/internal/infrastructure/persistence"
	"github.com/opsboard/backend/internal/infrastructure/scheduler"
	"github.com/opsboard/backend/internal/infrastructure/seed"
	"github.com/opsboard/backend/internal/infrastructure/syncfeed"
	"github.com/opsboard/backend/internal/infrastructure/telemetry"
	"github.com/opsboard/backend/internal/interfaces/http/handler"
	"github.com/opsboard/backend/internal/interfaces/http/middleware"
	"github.com/opsboard/backend/internal/interfaces/http/router"
)

const eventChannel = "opsboard:events"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, baseLog *zap.Logger) error {
	// Telemetry comes first so the logger can be teed into the OTLP pipeline
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	log := loggerProvider.Tee(baseLog, logger.ParseLevel(cfg.Log.Level))
	profiler, err := telemetry.NewProfiler(cfg.Telemetry.Profiling, log)
	if err != nil {
		return err
	}
	if cfg.Telemetry.Profiling.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer shutdownTelemetry(log, profiler, tracerProvider, meterProvider, loggerProvider)

	log.Info("Starting opsboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{DBName: cfg.Database.DBName}); err != nil {
			return err
		}
	}
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	// Repositories
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	requisitionRepo := persistence.NewGormRequisitionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	if err := seedIfEmpty(ctx, cfg, seed.Repositories{
		Locations: locationRepo,
		Items:     itemRepo,
		Inventory: inventoryRepo,
		Users:     userRepo,
	}, log); err != nil {
		return err
	}

	// Redis is optional; every consumer has an in-memory fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	// Reference data and state, loaded once
	graph, cat, ledger, reqs, err := loadState(ctx, cfg, locationRepo, itemRepo, inventoryRepo, requisitionRepo)
	if err != nil {
		return err
	}
	log.Info("State loaded",
		zap.Int("locations", graph.Len()),
		zap.Int("items", len(cat.IDs())),
		zap.Int("requisitions", len(reqs)))

	// Identity
	userService := appidentity.NewUserService(userRepo)
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)

	// Requisition store
	machine := requisition.NewStateMachine(requisition.NewRoleGate(graph, nil))
	store := appreq.NewStore(graph, cat, ledger, machine, userService, persistence.NewGormTransactionScope(db.DB))
	store.SetLogger(log)
	store.Load(reqs)

	// Idempotency
	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idemStore.Close() }()
	idemCfg := shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL}

	// Events
	meter := meterProvider.Meter("opsboard")
	metrics, err := telemetry.NewRequisitionMetrics(meter, store)
	if err != nil {
		return err
	}
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLogHandler(log))
	eventBus.Subscribe(metrics)
	if redisClient != nil {
		forwarder := event.NewRedisForwarder(redisClient, eventChannel)
		eventBus.Subscribe(event.NewIdempotentHandler(forwarder, idemStore, idemCfg, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = eventBus.Stop(context.Background()) }()
	store.SetEventPublisher(eventBus)

	// Sync
	var hashClient syncfeed.HashClient
	if redisClient != nil {
		hashClient = redisClient
	}
	feed, err := syncfeed.New(cfg.Sync, graph, cat, hashClient, log)
	if err != nil {
		return err
	}
	coordinator := appsync.NewCoordinator(telemetry.TracedFeed(feed), store,
		appsync.WithTimeout(cfg.Sync.Timeout),
		appsync.WithLogger(log),
	)

	syncHandler := handler.NewSyncHandler(coordinator, nil)
	if cfg.Sync.Enabled {
		syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			Interval:   cfg.Sync.Interval,
			RunOnStart: true,
			MaxHistory: cfg.Sync.MaxHistory,
		}, coordinator, log)
		if err != nil {
			return err
		}
		coordinator.SetRecorder(metrics.Recorder(syncScheduler))
		syncHandler = handler.NewSyncHandler(coordinator, syncScheduler)
		if err := syncScheduler.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Warn("Sync scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	} else {
		coordinator.SetRecorder(metrics.Recorder(nil))
		log.Info("Scheduled sync disabled; manual sync remains available")
	}

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Production:  cfg.App.IsProduction(),
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        cfg.Telemetry.Enabled,
		Meter:          meter,
		Auth: middleware.AuthConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Actors:         userService,
			AllowDevHeader: cfg.HTTP.DevUserHeader,
		},
		Logger: log,
	},
		handler.NewHealthHandler(db),
		handler.NewRequisitionHandler(store, idemStore, idemCfg),
		handler.NewInventoryHandler(store),
		handler.NewReferenceHandler(graph, cat),
		syncHandler,
		handler.NewAuthHandler(authService, userService),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// loadState reads the location graph, catalog, ledger and requisitions
func loadState(
	ctx context.Context,
	cfg *config.Config,
	locationRepo location.LocationRepository,
	itemRepo catalog.ItemRepository,
	inventoryRepo inventory.InventoryRepository,
	requisitionRepo requisition.RequisitionRepository,
) (*location.Graph, *catalog.Catalog, *inventory.Ledger, []*requisition.Requisition, error) {
	locations, err := locationRepo.LoadAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load locations: %w", err)
	}
	graph, err := location.NewGraph(locations, cfg.Location.DefaultRootID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("build location graph: %w", err)
	}

	items, err := itemRepo.LoadAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load items: %w", err)
	}
	cat, err := catalog.NewCatalog(items)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("build catalog: %w", err)
	}

	records, err := inventoryRepo.LoadAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load inventory: %w", err)
	}

	reqs, err := requisitionRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load requisitions: %w", err)
	}
	return graph, cat, inventory.NewLedger(records), reqs, nil
}

// seedIfEmpty applies the seed file when no location has been stored yet.
// A missing seed file only leaves the database empty.
func seedIfEmpty(ctx context.Context, cfg *config.Config, repos seed.Repositories, log *zap.Logger) error {
	existing, err := repos.Locations.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if _, err := os.Stat(cfg.Seed.File); err != nil {
		log.Warn("Database is empty and no seed file was found", zap.String("file", cfg.Seed.File))
		return nil
	}

	file, err := seed.LoadFile(cfg.Seed.File)
	if err != nil {
		return err
	}
	bundle, err := file.Build(cfg.Location.DefaultRootID, time.Now())
	if err != nil {
		return fmt.Errorf("invalid seed file %s: %w", cfg.Seed.File, err)
	}
	log.Info("Seeding empty database", zap.String("file", cfg.Seed.File))
	return seed.Apply(ctx, bundle, repos, seed.Options{}, log)
}

func shutdownTelemetry(log *zap.Logger, pr *telemetry.Profiler, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx := context.Background()
	if err := pr.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
}
