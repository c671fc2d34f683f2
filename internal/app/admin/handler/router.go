package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"painelloja/pkg/logger"
	"painelloja/pkg/metrics"
)

// SetupRoutes wires all routes of the admin service. Reads require a
// valid session; deletes additionally require the admin role. Uploaded
// product images are served statically under /uploads.
func SetupRoutes(
	categoryHandler *CategoryHandler,
	productHandler *ProductHandler,
	orderHandler *OrderHandler,
	authMiddleware *AuthMiddleware,
	uploadsDir string,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("admin-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "admin-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static("/uploads", uploadsDir)

	categories := router.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	{
		categories.POST("", categoryHandler.Create)
		categories.GET("", categoryHandler.List)
		categories.GET("/:id", categoryHandler.Get)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", authMiddleware.RequireRole("admin"), categoryHandler.Delete)
	}

	products := router.Group("/products")
	products.Use(authMiddleware.Authenticate())
	{
		products.POST("", productHandler.Create)
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", authMiddleware.RequireRole("admin"), productHandler.Delete)
	}

	orders := router.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.PUT("/:id", orderHandler.Update)
		orders.DELETE("/:id", authMiddleware.RequireRole("admin"), orderHandler.Delete)
	}

	return router
}
