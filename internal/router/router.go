package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/pdf-api/internal/handler"
	authhandler "github.com/jwalitptl/pdf-api/internal/handler/auth"
	"github.com/jwalitptl/pdf-api/internal/handler/health"
	pdfhandler "github.com/jwalitptl/pdf-api/internal/handler/pdf"
	userhandler "github.com/jwalitptl/pdf-api/internal/handler/user"
	"github.com/jwalitptl/pdf-api/internal/middleware"
)

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	h       *handler.Handler
	healthH *health.Handler
	pdfH    *pdfhandler.Handler
	authH   *authhandler.Handler
	userH   *userhandler.Handler
	metrics *routerMetrics
	config  RouterConfig
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	ServiceName      string
	Logger           zerolog.Logger
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RateTTL          time.Duration
	CORSConfig       middleware.CORSConfig
	SizeLimit        middleware.SizeLimitConfig
	RequestTimeout   time.Duration
	ProtectDocuments bool
	MetricsPrefix    string
	Registerer       prometheus.Registerer
	Metrics          gin.HandlerFunc
}

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Root   *handler.Handler
	Health *health.Handler
	PDF    *pdfhandler.Handler
	Auth   *authhandler.Handler
	User   *userhandler.Handler
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:  engine,
		auth:    auth,
		h:       handlers.Root,
		healthH: handlers.Health,
		pdfH:    handlers.PDF,
		authH:   handlers.Auth,
		userH:   handlers.User,
		metrics: initRouterMetrics(config.MetricsPrefix, config.Registerer),
		config:  config,
	}

	engine.Use(
		middleware.Recovery(config.Logger),
		middleware.RequestID(),
		otelgin.Middleware(config.ServiceName),
		middleware.Logger(config.Logger),
		middleware.ProcessTime(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(config.SizeLimit),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
			TTL:   config.RateTTL,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.ErrorHandler(),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/", r.h.Root)
	r.healthH.RegisterRoutes(r.engine)
	if r.config.Metrics != nil {
		r.engine.GET("/metrics", r.config.Metrics)
	}
	r.engine.NoRoute(r.h.NotFound)
	r.engine.NoMethod(r.h.MethodNotAllowed)

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	docAuth := r.auth.Optional()
	if r.config.ProtectDocuments {
		docAuth = r.auth.Authenticate()
	}
	r.pdfH.RegisterRoutes(api, docAuth)

	authRoutes := api.Group("")
	authRoutes.Use(middleware.NoStore())
	r.authH.RegisterRoutes(authRoutes)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate(), middleware.NoStore())
	r.userH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if prefix == "" {
		prefix = "http"
	}
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	}
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		statusLabel := strconv.Itoa(status)
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, statusLabel).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, statusLabel).Inc()

		switch {
		case status >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case status >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
