package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transfer/internal/handler"
	"transfer/internal/logger"
	"transfer/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	QuoteHandler   *handler.QuoteHandler
	AdminHandler   *handler.AdminHandler
	PlaceHandler   *handler.PlaceHandler
	CatalogHandler *handler.CatalogHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Logger         *logger.Logger
	AllowOrigins   string
	IdempotencyTTL time.Duration
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORSMiddleware(deps.AllowOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}
	router.Use(middleware.ErrorReporter(log))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("", deps.QuoteHandler.CreateQuote)
			quotes.POST("/hourly", deps.QuoteHandler.CreateHourlyQuote)
		}

		// Place routes.
		if deps.PlaceHandler != nil {
			places := v1.Group("/places")
			{
				places.GET("/autocomplete", deps.PlaceHandler.Autocomplete)
				places.GET("/:id", deps.PlaceHandler.GetPlace)
			}
		}

		// Public catalog routes.
		if deps.CatalogHandler != nil {
			v1.GET("/currencies", deps.CatalogHandler.ListCurrencies)
			v1.GET("/child-seats", deps.CatalogHandler.ListChildSeats)
		}

		// Admin routes.
		admin := v1.Group("/admin")
		if deps.RedisClient != nil {
			admin.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.IdempotencyTTL, log))
		}
		{
			vehicles := admin.Group("/vehicles")
			{
				vehicles.GET("", deps.AdminHandler.ListVehicles)
				vehicles.POST("", deps.AdminHandler.CreateVehicle)
				vehicles.GET("/:id", deps.AdminHandler.GetVehicle)
				vehicles.PUT("/:id", deps.AdminHandler.UpdateVehicle)
				vehicles.DELETE("/:id", deps.AdminHandler.DeleteVehicle)
				vehicles.GET("/:id/pricing", deps.AdminHandler.GetPricing)
				vehicles.PUT("/:id/pricing", deps.AdminHandler.SavePricing)
				vehicles.GET("/:id/routes", deps.AdminHandler.ListRoutes)
				vehicles.POST("/:id/routes", deps.AdminHandler.CreateRoute)
			}

			routes := admin.Group("/routes")
			{
				routes.PUT("/:id", deps.AdminHandler.UpdateRoute)
				routes.DELETE("/:id", deps.AdminHandler.DeleteRoute)
			}

			currencies := admin.Group("/currencies")
			{
				currencies.GET("", deps.AdminHandler.ListCurrencies)
				currencies.PUT("/:code", deps.AdminHandler.UpsertCurrency)
				currencies.DELETE("/:code", deps.AdminHandler.DeleteCurrency)
			}

			seats := admin.Group("/child-seats")
			{
				seats.GET("", deps.AdminHandler.ListChildSeats)
				seats.PUT("", deps.AdminHandler.UpsertChildSeat)
				seats.PUT("/:id", deps.AdminHandler.UpsertChildSeat)
				seats.DELETE("/:id", deps.AdminHandler.DeleteChildSeat)
			}
		}
	}

	return router
}
