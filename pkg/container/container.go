package container

import (
	"context"
	"fmt"
	"time"

	"holyfit-backend/internal/config"
	cartService "holyfit-backend/internal/domains/cart/service"
	catalogHandler "holyfit-backend/internal/domains/catalog/handler"
	catalogRepo "holyfit-backend/internal/domains/catalog/repository"
	catalogService "holyfit-backend/internal/domains/catalog/service"
	checkoutHandler "holyfit-backend/internal/domains/checkout/handler"
	checkoutJob "holyfit-backend/internal/domains/checkout/job"
	checkoutService "holyfit-backend/internal/domains/checkout/service"
	storeHandler "holyfit-backend/internal/domains/store/handler"
	storeRepo "holyfit-backend/internal/domains/store/repository"
	storeService "holyfit-backend/internal/domains/store/service"
	infraCache "holyfit-backend/internal/infrastructure/cache"
	"holyfit-backend/internal/infrastructure/database"
	"holyfit-backend/internal/infrastructure/email"
	"holyfit-backend/internal/infrastructure/queue"
	"holyfit-backend/internal/shared/middleware"
	"holyfit-backend/pkg/cache"
	"holyfit-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// A catalog refresh hits the source, so one per client every 30 seconds.
const adminRefreshPerMinute = 2

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph shared by cmd/api and cmd/worker.
// Build order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB // nil unless CATALOG_SOURCE=postgres
	Cache       cache.Cache
	AsynqClient *asynq.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CatalogSource  catalogRepo.Source
	StorePersister storeRepo.Persister

	// ========================================
	// SERVICE LAYER
	// ========================================
	CatalogService  *catalogService.CatalogService
	StoreService    *storeService.StoreService
	CheckoutService *checkoutService.CheckoutService

	// ========================================
	// HANDLER LAYER
	// ========================================
	CatalogHandler  *catalogHandler.Handler
	StoreHandler    *storeHandler.Handler
	CheckoutHandler *checkoutHandler.Handler

	CheckoutLimiter *middleware.RateLimiter
	AdminLimiter    *middleware.RateLimiter

	// Worker
	OrderNotificationHandler *checkoutJob.OrderNotificationHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the whole graph. Redis being down is not fatal: the
// store keeps working in memory and persistence errors are logged.
func NewContainer(ctx context.Context) (*Container, error) {
	logger.Info("Initializing DI container", nil)

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	logger.Info("Config loaded", map[string]interface{}{
		"environment":    cfg.App.Environment,
		"catalog_source": cfg.Catalog.Source,
	})

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	c.initServices()

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.initHandlers()

	logger.Info("DI container initialized", nil)
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisCache.Connect(pingCtx); err != nil {
		logger.Warn("Redis connection failed (non-critical)", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Cache = redisCache

	c.AsynqClient = queue.NewClient(cfg.Queue.RedisAddr, cfg.Redis.Password, cfg.Redis.DB)

	if cfg.Catalog.Source != config.CatalogSourcePostgres {
		return nil
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	defer cancelConnect()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	return nil
}

func (c *Container) initRepositories() error {
	cfg := c.Config

	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		c.CatalogSource = catalogRepo.NewPostgresSource(c.DB.Pool)
	case config.CatalogSourceHTTP:
		c.CatalogSource = catalogRepo.NewHTTPSource(cfg.Catalog.APIURL, cfg.Catalog.Timeout)
	default:
		return fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	c.StorePersister = storeRepo.NewCachePersister(c.Cache, cfg.Store.Namespace, cfg.Store.TTL)
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	c.CatalogService = catalogService.NewCatalogService(c.CatalogSource, c.Cache, cfg.Catalog.CacheTTL)

	c.StoreService = storeService.NewStoreService(
		c.CatalogService,
		cartService.DefaultCoupons(),
		c.StorePersister,
		cfg.Store.IdleTTL,
	)

	c.CheckoutService = checkoutService.NewCheckoutService(
		c.StoreService,
		c.AsynqClient,
		cfg.Checkout.WhatsAppNumber,
	)
}

func (c *Container) initHandlers() {
	cfg := c.Config

	c.CatalogHandler = catalogHandler.NewHandler(c.CatalogService, c.StoreService)
	c.StoreHandler = storeHandler.NewHandler(c.StoreService)
	c.CheckoutHandler = checkoutHandler.NewHandler(c.CheckoutService)
	c.CheckoutLimiter = middleware.NewRateLimiter(cfg.Checkout.RateLimitPerMinute, cfg.Checkout.RateLimitBurst)
	c.AdminLimiter = middleware.NewRateLimiter(adminRefreshPerMinute, 1)

	c.OrderNotificationHandler = checkoutJob.NewOrderNotificationHandler(c.orderNotifier())
}

// orderNotifier mails orders when ORDER_NOTIFY_EMAIL is set, otherwise logs them.
func (c *Container) orderNotifier() checkoutJob.Notifier {
	cfg := c.Config
	if cfg.Checkout.NotifyEmail == "" {
		return checkoutJob.LogNotifier{}
	}
	sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	return checkoutJob.NewMailNotifier(sender, cfg.Checkout.NotifyEmail)
}

// Cleanup flushes unsaved sessions and releases connections.
func (c *Container) Cleanup(ctx context.Context) {
	logger.Info("Cleaning up container resources", nil)

	if c.StoreService != nil {
		c.StoreService.Flush(ctx)
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close queue client", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}

	logger.Info("Container cleanup completed", nil)
}
