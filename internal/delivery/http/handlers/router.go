package handlers

import (
	"net/http"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Orders         *OrderHandler
	Refunds        *RefundHandler
	Webhooks       *WebhookHandler
	Identity       domain.IdentityResolver
	Limiter        middleware.Limiter
	Metrics        *metrics.TicketMetrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

func InitRoutes(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(deps.RequestTimeout))

	requireAuth := middleware.RequireAuth(deps.Identity, AbortWithError)
	optionalAuth := middleware.OptionalAuth(deps.Identity, AbortWithError)
	rateLimit := func(scope string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Limiter, scope, deps.Metrics, AbortWithError)
	}

	orders := router.Group("/orders")
	{
		orders.POST("/create", requireAuth, rateLimit("orders_create"), deps.Orders.CreateOrder)
		orders.POST("/verify", optionalAuth, deps.Orders.VerifyPayment)
		orders.POST("/webhook", deps.Webhooks.HandleWebhook)
		orders.GET("/:id", requireAuth, deps.Orders.GetOrder)
	}

	refunds := router.Group("/refunds")
	{
		refunds.POST("/create", requireAuth, rateLimit("refunds_create"), deps.Refunds.CreateRefund)
		refunds.GET("/:id", requireAuth, deps.Refunds.GetRefund)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}
