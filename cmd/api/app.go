package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/pdf-api/internal/config"
	"github.com/jwalitptl/pdf-api/internal/email"
	"github.com/jwalitptl/pdf-api/internal/handler"
	authhandler "github.com/jwalitptl/pdf-api/internal/handler/auth"
	"github.com/jwalitptl/pdf-api/internal/handler/health"
	pdfhandler "github.com/jwalitptl/pdf-api/internal/handler/pdf"
	prometheushandler "github.com/jwalitptl/pdf-api/internal/handler/prometheus"
	userhandler "github.com/jwalitptl/pdf-api/internal/handler/user"
	"github.com/jwalitptl/pdf-api/internal/middleware"
	"github.com/jwalitptl/pdf-api/internal/render"
	"github.com/jwalitptl/pdf-api/internal/repository"
	"github.com/jwalitptl/pdf-api/internal/repository/memory"
	"github.com/jwalitptl/pdf-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/pdf-api/internal/repository/redis"
	"github.com/jwalitptl/pdf-api/internal/router"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	authService "github.com/jwalitptl/pdf-api/internal/service/auth"
	pdfService "github.com/jwalitptl/pdf-api/internal/service/pdf"
	userService "github.com/jwalitptl/pdf-api/internal/service/user"
	"github.com/jwalitptl/pdf-api/pkg/auth"
	"github.com/jwalitptl/pdf-api/pkg/circuitbreaker"
	redisbroker "github.com/jwalitptl/pdf-api/pkg/messaging/redis"
	"github.com/jwalitptl/pdf-api/pkg/metrics"
	"github.com/jwalitptl/pdf-api/pkg/security"
	"github.com/jwalitptl/pdf-api/pkg/validator"
)

const metricsNamespace = "pdfapi"

type app struct {
	router  *router.Router
	pdf     *pdfService.Service
	metrics *metrics.Metrics
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	return buildApp(ctx, cfg, log, render.NewFPDF(render.Options{PageSize: cfg.PDF.PageSize, Creator: cfg.Name}))
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, renderer render.Renderer) (*app, error) {
	if err := validator.RegisterGin(); err != nil {
		return nil, err
	}

	a := &app{}

	promH := prometheushandler.New()
	a.metrics = metrics.New(metricsNamespace, promH.Registry())

	var redisClient redis.UniversalClient
	if cfg.Store.Driver == "redis" || cfg.Audit.Channel != "" {
		client, err := redisrepo.NewClient(ctx, cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		redisClient = client
	}

	store, closer, err := newUserStore(ctx, cfg, redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	var auditOpts []audit.Option
	if cfg.Audit.Channel != "" {
		auditOpts = append(auditOpts, audit.WithPublisher(redisbroker.NewBroker(redisClient), cfg.Audit.Channel))
	}
	auditor := audit.NewService(log, auditOpts...)
	a.pdf = newPDFService(cfg, renderer, a.metrics, auditor)

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	authSvc := authService.NewService(store, jwtSvc, hasher, email.NewService(cfg.Email, log), auditor, a.metrics,
		authService.Config{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockoutDuration:  cfg.Auth.LockoutDuration,
		})
	userSvc := userService.NewService(store, hasher, auditor)

	a.router = router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Root:   handler.NewHandler(handler.Info{Name: cfg.Name, Version: cfg.Version}),
			Health: health.NewHandler(store),
			PDF:    pdfhandler.NewHandler(a.pdf),
			Auth:   authhandler.NewHandler(authSvc),
			User:   userhandler.NewHandler(userSvc),
		},
		router.RouterConfig{
			ServiceName:      "pdf-api",
			Logger:           log,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RateTTL:          cfg.RateLimit.TTL,
			CORSConfig:       middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
			SizeLimit: middleware.SizeLimitConfig{
				MaxBodySize:   cfg.Server.MaxBodyBytes,
				MaxHeaderSize: middleware.DefaultSizeLimitConfig().MaxHeaderSize,
			},
			RequestTimeout:   cfg.Server.RequestTimeout,
			ProtectDocuments: cfg.Auth.ProtectDocuments,
			MetricsPrefix:    metricsNamespace + "_http",
			Registerer:       promH.Registry(),
			Metrics:          promH.Handler(),
		},
	)
	a.router.Setup()

	return a, nil
}

func newPDFService(cfg *config.Config, renderer render.Renderer, m *metrics.Metrics, auditor *audit.Service) *pdfService.Service {
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:                "renderer",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             cfg.PDF.BreakerTimeout,
		ConsecutiveFailures: cfg.PDF.BreakerFailures,
	})
	return pdfService.NewService(renderer, breaker, m, auditor, pdfService.Config{
		Timeout:         cfg.PDF.Timeout,
		MaxContentBytes: cfg.PDF.MaxContentBytes,
	})
}

// newUserStore returns the configured store and an optional closer. The redis
// client is owned by the caller.
func newUserStore(ctx context.Context, cfg *config.Config, client redis.UniversalClient) (repository.UserRepository, func() error, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.NewUserRepository(), nil, nil
	case "redis":
		return redisrepo.NewUserRepository(client, cfg.Redis.KeyPrefix), nil, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewUserRepository(postgres.NewBaseRepository(db)), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
