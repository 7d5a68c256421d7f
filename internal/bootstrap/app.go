package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"taskgate/internal/app"
	"taskgate/internal/cache"
	"taskgate/internal/config"
	"taskgate/internal/health"
	"taskgate/internal/model"
	"taskgate/internal/pkg/jwtutil"
	"taskgate/internal/platform/database"
	rabbitmqClient "taskgate/internal/platform/rabbitmq"
	redisClient "taskgate/internal/platform/redis"
	"taskgate/internal/repository"
	"taskgate/internal/worker"
)

// App owns every long-lived client and the services built on them.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB          *gorm.DB
	Redis       *redis.Client
	TaskCache   *cache.TaskCache
	MQConn      *amqp.Connection
	AuditWorker *worker.AuditPersistWorker

	AuthService    *app.AuthService
	TaskService    *app.TaskService
	TokenValidator *jwtutil.Validator
	Health         *health.Aggregator

	StartedAt time.Time
}

// New connects the store (and redis and rabbitmq when enabled), migrates the
// schema and assembles the services. Any failure is fatal to startup.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := database.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return err
	}
	a.DB = db
	if err := db.WithContext(ctx).AutoMigrate(&model.Account{}, &model.Task{}, &model.AuditEvent{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	a.Logger.Info("database ready", "driver", cfg.Database.Driver)

	var taskCache app.TaskCache
	if cfg.Redis.Enabled {
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.TaskCache = cache.NewTaskCache(a.Redis, time.Duration(cfg.Redis.TaskListTTLSecond)*time.Second)
		taskCache = a.TaskCache
		a.Logger.Info("task list cache enabled", "addr", cfg.Redis.Addr)
	}

	auditRepo := repository.NewAuditRepository(db)
	var audit app.AuditRecorder = auditRepo
	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.AuditQueue)
		if err != nil {
			return err
		}
		a.AuditWorker = worker.NewAuditPersistWorker(a.MQConn, auditRepo, cfg.RabbitMQ.AuditQueue, a.Logger)
		if err := a.AuditWorker.Start(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("start audit worker failed: %w", err)
		}
		audit = rabbitmqClient.NewAuditPublisher(a.MQConn, cfg.RabbitMQ.AuditQueue)
	}

	accountService, err := app.NewAccountService(repository.NewAccountRepository(db), cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokenOpts := jwtutil.Options{
		Secret:           cfg.Auth.JWTSecret,
		TTL:              time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute,
		Issuer:           cfg.Auth.Issuer,
		Audience:         cfg.Auth.Audience,
		ValidateIssuer:   cfg.Auth.ValidateIssuer,
		ValidateAudience: cfg.Auth.ValidateAudience,
		ClockSkew:        time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
	}
	a.TokenValidator = jwtutil.NewValidator(tokenOpts)
	a.AuthService = app.NewAuthService(accountService, jwtutil.NewIssuer(tokenOpts), audit, a.Logger)
	a.TaskService = app.NewTaskService(repository.NewTaskRepository(db), taskCache, a.Logger)

	a.Health = a.healthChecks()
	return nil
}

func (a *App) healthChecks() *health.Aggregator {
	agg := health.NewAggregator(health.DefaultTimeout)
	agg.Register("self", func(context.Context) health.Result {
		return health.Result{Status: health.Healthy, Description: "process is running"}
	}, health.Unhealthy, "live")
	agg.Register("store", health.Ping(func(ctx context.Context) error {
		return database.Ping(ctx, a.DB)
	}, health.Unhealthy), health.Unhealthy, "db", "ready")
	if a.TaskCache != nil {
		agg.Register("cache", health.Ping(a.TaskCache.Ping, health.Degraded), health.Degraded, "cache", "ready")
	}
	if a.MQConn != nil {
		agg.Register("broker", health.Ping(func(context.Context) error {
			return rabbitmqClient.Ping(a.MQConn)
		}, health.Degraded), health.Degraded, "broker", "ready")
	}
	return agg
}

// Close stops the worker before closing the connection it consumes from.
func (a *App) Close() error {
	var errs []error
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database failed: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
