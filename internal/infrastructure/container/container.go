package container

import (
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/gdugdh24/tapcard-backend/internal/delivery/http"
	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/tapcard-backend/internal/exchange"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/database"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/scheduler"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/server"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/gdugdh24/tapcard-backend/internal/repository/cache"
	"github.com/gdugdh24/tapcard-backend/internal/repository/memory"
	"github.com/gdugdh24/tapcard-backend/internal/repository/postgres"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/analytics"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/auth"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/connection"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/followup"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/notification"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/profile"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/settings"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Repositories is the storage backend the use cases run on.
type Repositories struct {
	Users         repository.UserRepository
	Sessions      repository.SessionRepository
	Profiles      repository.ProfileRepository
	Settings      repository.SettingsRepository
	Connections   repository.ConnectionRepository
	Notifications repository.NotificationRepository
}

func postgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         postgres.NewUserRepository(db),
		Sessions:      postgres.NewSessionRepository(db),
		Profiles:      postgres.NewProfileRepository(db),
		Settings:      postgres.NewSettingsRepository(db),
		Connections:   postgres.NewConnectionRepository(db),
		Notifications: postgres.NewNotificationRepository(db),
	}
}

// MemoryRepositories backs every repository with one in-process store.
func MemoryRepositories() Repositories {
	store := memory.NewStore()
	return Repositories{
		Users:         store.Users(),
		Sessions:      store.Sessions(),
		Profiles:      store.Profiles(),
		Settings:      store.Settings(),
		Connections:   store.Connections(),
		Notifications: store.Notifications(),
	}
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Router *gin.Engine
	Gemini *gemini.GeminiClient
	Broker *events.Broker
	Worker *scheduler.Worker
}

// NewContainer connects to the configured stores and wires the application.
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	var (
		db    *sqlx.DB
		repos Repositories
	)
	switch cfg.Storage.Type {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		repos = MemoryRepositories()
	default:
		if cfg.Storage.AutoMigrate {
			if err := database.RunMigrations(cfg.Database.GetURL()); err != nil {
				return nil, err
			}
		}
		var err error
		db, err = database.NewPostgresDB(&cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos = postgresRepositories(db)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	var geminiClient *gemini.GeminiClient
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewGeminiClient(cfg.GeminiAPIKey, log)
		if err != nil {
			// AI text is optional; fallbacks cover it
			log.Warn("failed to initialize gemini client", zap.Error(err))
			geminiClient = nil
		}
	}

	c := Assemble(cfg, log, repos, redisClient, geminiClient)
	c.DB = db
	return c, nil
}

// Assemble wires use cases, handlers and the router on top of ready
// stores. geminiClient may be nil.
func Assemble(cfg *config.Config, log *zap.Logger, repos Repositories, redisClient *redis.Client, geminiClient *gemini.GeminiClient) *Container {
	profileRepo := repos.Profiles
	if cfg.Storage.ProfileCacheTTL > 0 {
		profileRepo = cache.NewProfileCache(profileRepo, redisClient, cfg.Storage.ProfileCacheTTL, log)
	}

	var (
		bioWriter     profile.BioWriter
		messageWriter followup.MessageWriter
	)
	if geminiClient != nil {
		bioWriter = geminiClient
		messageWriter = geminiClient
	}

	broker := events.NewBroker()
	codec := exchange.NewCodec(cfg.Exchange.Scheme, cfg.Exchange.Host, cfg.Exchange.AppID)
	sched := scheduler.NewRedisScheduler(redisClient, cfg.FollowUp.KeyPrefix)

	// Initialize use cases
	notificationUseCase := notification.NewNotificationUseCase(repos.Notifications, broker)

	followUps := followup.NewService(
		sched,
		repos.Settings,
		repos.Connections,
		notificationUseCase,
		messageWriter,
		log,
	)

	authUseCase := auth.NewAuthUseCase(
		repos.Users,
		profileRepo,
		repos.Settings,
		repos.Sessions,
		followUps,
		cfg.JWT.AccessSecret,
		time.Duration(cfg.JWT.AccessExpiryMin)*time.Minute,
		log,
	)

	profileUseCase := profile.NewProfileUseCase(
		profileRepo,
		codec,
		bioWriter,
		broker,
	)

	connectionUseCase := connection.NewConnectionUseCase(
		repos.Connections,
		profileRepo,
		repos.Settings,
		codec,
		followUps,
		notificationUseCase,
		broker,
		log,
	)

	settingsUseCase := settings.NewSettingsUseCase(repos.Settings, followUps, broker, log)
	analyticsUseCase := analytics.NewAnalyticsUseCase(repos.Connections)

	// Follow-up worker
	worker := scheduler.NewWorker(sched, scheduler.WorkerConfig{
		PollInterval: cfg.FollowUp.PollInterval,
		BatchSize:    cfg.FollowUp.BatchSize,
		MaxAttempts:  cfg.FollowUp.MaxAttempts,
		RetryDelay:   cfg.FollowUp.RetryDelay,
		LeaseTimeout: cfg.FollowUp.LeaseTimeout,
	}, log)
	worker.Register(followup.JobKind, followUps)

	// Initialize handlers
	httpLog := log.Named("http")
	router := http.NewRouter(
		handler.NewAuthHandler(authUseCase, httpLog),
		handler.NewProfileHandler(profileUseCase, httpLog),
		handler.NewExchangeHandler(connectionUseCase, httpLog),
		handler.NewConnectionHandler(connectionUseCase, httpLog),
		handler.NewSettingsHandler(settingsUseCase, httpLog),
		handler.NewAnalyticsHandler(analyticsUseCase, httpLog),
		handler.NewNotificationHandler(notificationUseCase, httpLog),
		handler.NewEventsHandler(broker, httpLog),
		middleware.NewAuthMiddleware(authUseCase),
		middleware.NewRateLimiter(cfg.RateLimit.ExchangeRPS, cfg.RateLimit.ExchangeBurst),
		httpLog,
	)

	// Setup routes
	ginRouter := router.Setup()

	return &Container{
		Config: cfg,
		Log:    log,
		Redis:  redisClient,
		Server: server.NewServer(&cfg.Server, ginRouter, log),
		Router: ginRouter,
		Gemini: geminiClient,
		Broker: broker,
		Worker: worker,
	}
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Error("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
