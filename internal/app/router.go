package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"pos/internal/handler"
	"pos/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler     *handler.AuthHandler
	CardHandler     *handler.CardHandler
	CheckoutHandler *handler.CheckoutHandler
	Sessions        middleware.SessionLoader
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	AllowOrigin     string
	DeviceID        string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowOrigin))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.Idempotency(deps.RedisClient, middleware.IdempotencyTTL))

	// Auth routes are reachable without a session.
	auth := v1.Group("/auth")
	{
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/signup", deps.AuthHandler.Signup)
		auth.POST("/logout", deps.AuthHandler.Logout)
		auth.GET("/session", deps.AuthHandler.Session)
	}

	v1.GET("/catalog", deps.CardHandler.Catalog)

	// Everything else needs a logged-in operator.
	secured := v1.Group("")
	secured.Use(middleware.RequireSession(deps.Sessions, handler.LoginRoute))
	if deps.NewRelicApp != nil {
		secured.Use(middleware.NewRelicAttributes(deps.DeviceID))
	}
	{
		cards := secured.Group("/cards")
		{
			cards.GET("", deps.CardHandler.GetAll)
			cards.GET("/random", deps.CardHandler.Random)
			cards.POST("/issue", deps.CardHandler.IssueCard)
			cards.POST("/register", deps.CardHandler.RegisterCard)
			cards.GET("/:id/balance", deps.CardHandler.Balance)
			cards.GET("/:id/transactions", deps.CardHandler.Transactions)
			cards.POST("/:id/reload", deps.CardHandler.Reload)
			cards.POST("/:id/tap", deps.CardHandler.Tap)
		}

		customers := secured.Group("/customers")
		{
			customers.GET("", deps.CardHandler.Customers)
			customers.GET("/:id", deps.CardHandler.Customer)
		}

		secured.GET("/forms/options", deps.CardHandler.FormOptions)
		secured.GET("/reports/summary", deps.CardHandler.ReportsSummary)

		checkout := secured.Group("/checkout")
		{
			checkout.POST("", deps.CheckoutHandler.Start)
			checkout.GET("/:id", deps.CheckoutHandler.Get)
			checkout.POST("/:id/card", deps.CheckoutHandler.PresentCard)
			checkout.POST("/:id/process", deps.CheckoutHandler.Process)
			checkout.POST("/:id/cancel", deps.CheckoutHandler.Cancel)
			checkout.POST("/:id/print", deps.CheckoutHandler.Print)
			checkout.POST("/:id/done", deps.CheckoutHandler.Done)
			checkout.DELETE("/:id", deps.CheckoutHandler.Abandon)
		}

		receipts := secured.Group("/receipts")
		{
			receipts.GET("", deps.CheckoutHandler.ListReceipts)
			receipts.GET("/:id", deps.CheckoutHandler.GetReceipt)
		}
	}

	return router
}
