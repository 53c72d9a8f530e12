package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/database"
	kafkainfra "github.com/wayfare-dev/wayfare/internal/infra/kafka"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
	"github.com/wayfare-dev/wayfare/internal/infra/mail"
	redisinfra "github.com/wayfare-dev/wayfare/internal/infra/redis"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	postgresrepo "github.com/wayfare-dev/wayfare/internal/repository/postgres"
	redisrepo "github.com/wayfare-dev/wayfare/internal/repository/redis"
	"github.com/wayfare-dev/wayfare/internal/transport/http/middleware"
	"github.com/wayfare-dev/wayfare/internal/transport/http/routes"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	keyProvider, err := newKeyProvider(cfg, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init key provider: %w", err)
	}
	issuer := security.NewTokenIssuer(keyProvider, cfg.App.Name)

	repos := postgresrepo.NewRepositories(pool)
	tokenCache := redisrepo.NewTokenCache(redisClient.Client())

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var mailer port.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP, cfg.App.Name)
	} else {
		log.Info("smtp host not configured, logging verification codes instead")
		mailer = mail.NewLoggingMailer(log)
	}

	sessionService := usecase.NewSessionService(cfg, repos.Accounts, repos.Logins, tokenCache, issuer, eventPublisher, log)
	registrationService := usecase.NewRegistrationService(repos.Accounts, security.DefaultPasswordValidator(), eventPublisher, log)
	accountService := usecase.NewAccountService(repos.Accounts)
	verificationService := usecase.NewVerificationService(cfg, repos.Accounts, mailer, log)
	plannerService := usecase.NewPlannerService(repos.Planners, repos.Plans, repos.Calendars)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Sessions:     sessionService,
			Registration: registrationService,
			Accounts:     accountService,
			Verification: verificationService,
			Planners:     plannerService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting wayfare API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// newKeyProvider loads RSA keys from disk, falling back to an ephemeral
// keypair outside production so the service can boot without secrets.
func newKeyProvider(cfg *config.AppConfig, log *zap.Logger) (security.KeyProvider, error) {
	provider, err := security.NewFileKeyProvider(cfg.JWT.KeyDirectory)
	if err == nil {
		return provider, nil
	}
	if cfg.App.Env == "production" {
		return nil, err
	}

	log.Warn("signing keys unavailable, generating ephemeral keypair",
		zap.String("key_directory", cfg.JWT.KeyDirectory),
		zap.Error(err),
	)
	return security.NewEphemeralKeyProvider()
}
