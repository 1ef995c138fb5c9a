package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"

	auditHandler "library-backend/internal/domains/audit/handler"
	auditRepo "library-backend/internal/domains/audit/repository"
	auditService "library-backend/internal/domains/audit/service"
	borrowingHandler "library-backend/internal/domains/borrowing/handler"
	borrowingRepo "library-backend/internal/domains/borrowing/repository"
	borrowingService "library-backend/internal/domains/borrowing/service"
	catalogHandler "library-backend/internal/domains/catalog/handler"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	catalogService "library-backend/internal/domains/catalog/service"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config,
// infrastructure, repositories, services, handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	UserRepo      userRepo.RepositoryInterface
	CatalogRepo   catalogRepo.RepositoryInterface
	BorrowingRepo borrowingRepo.RepositoryInterface
	AuditRepo     auditRepo.RepositoryInterface

	UserService      userService.ServiceInterface
	CatalogService   catalogService.ServiceInterface
	BorrowingService borrowingService.ServiceInterface
	AuditService     auditService.ServiceInterface

	UserHandler      *userHandler.Handler
	CatalogHandler   *catalogHandler.Handler
	BorrowingHandler *borrowingHandler.Handler
	ReportHandler    *auditHandler.Handler
}

// NewContainer builds and initializes the whole dependency graph
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Printf("[Container] Config loaded (environment: %s)", cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("[Container] Database connected")

	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis is a cache and the asynq broker; the API itself can
		// limp along without it, so log and continue.
		log.Printf("[Container] Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("[Container] Redis connected")
	}
	c.Cache = redisClient

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("[Container] Initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool, c.Cache)
	c.BorrowingRepo = borrowingRepo.NewPostgresRepository(pool)
	c.AuditRepo = auditRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.AuditService = auditService.NewAuditService(c.AuditRepo)
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, c.AuditService)
	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo, c.AuditService)
	c.BorrowingService = borrowingService.NewLifecycleService(
		c.BorrowingRepo,
		c.CatalogRepo,
		c.AuditService,
		c.Config.Loan,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewHandler(c.UserService)
	c.CatalogHandler = catalogHandler.NewHandler(c.CatalogService)
	c.BorrowingHandler = borrowingHandler.NewHandler(c.BorrowingService)
	c.ReportHandler = auditHandler.NewHandler(c.AuditService)
}

// Cleanup releases infrastructure resources on shutdown
func (c *Container) Cleanup() {
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("[Container] Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisClient); ok {
			if err := rc.Close(); err != nil {
				log.Printf("[Container] Failed to close Redis: %v", err)
			} else {
				log.Println("[Container] Redis connections closed")
			}
		}
	}
}
