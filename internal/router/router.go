package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/triage-api/internal/handler/health"
	prometheushandler "github.com/jwalitptl/triage-api/internal/handler/prometheus"
	"github.com/jwalitptl/triage-api/internal/middleware"
	"github.com/jwalitptl/triage-api/pkg/httputil"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	MaxBodyBytes     int64
	RequestTimeout   time.Duration
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	health   *health.Handler
	metricsH *prometheushandler.Handler
	handlers []Handler
}

// NewRouter builds the engine and its middleware chain. API handlers are mounted under
// /api/v1 by Setup; health and metrics stay at the root.
func NewRouter(
	config RouterConfig,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	db health.Pinger,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.NewErrorResponse("route not found"))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, httputil.NewErrorResponse("method not allowed"))
	})

	r := &Router{
		engine:   engine,
		config:   config,
		health:   health.NewHandler(db),
		metricsH: prometheushandler.New(gatherer),
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Metrics(m),
		middleware.CORS(config.CORSConfig),
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.metricsH.RegisterRoutes(r.engine)

	api := r.engine.Group("/api/v1")
	sizeLimit := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = r.config.MaxBodyBytes
	}
	api.Use(middleware.SizeLimit(sizeLimit))
	if r.config.RequestTimeout > 0 {
		api.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}))
	}

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
