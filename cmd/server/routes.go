package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/handlers"
)

type routeDeps struct {
	apiKeyHandler         *handlers.ApiKeyHandler
	predictHandler        *handlers.PredictHandler
	usageHandler          *handlers.UsageHandler
	healthHandler         *handlers.HealthHandler
	accessGuardMiddleware gin.HandlerFunc
	adminAuthMiddleware   gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	r.GET("/health", d.healthHandler.Health)
	r.GET("/metrics", d.adminAuthMiddleware, gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Partner routes (API key protected)
		partner := v1.Group("")
		partner.Use(d.accessGuardMiddleware)
		{
			partner.POST("/predict", d.predictHandler.Predict)
		}

		// Admin routes (bearer token protected)
		admin := v1.Group("/admin")
		admin.Use(d.adminAuthMiddleware)
		{
			admin.POST("/api-keys", d.apiKeyHandler.CreateApiKey)
			admin.GET("/api-keys", d.apiKeyHandler.ListApiKeys)
			admin.DELETE("/api-keys/:id", d.apiKeyHandler.RevokeApiKey)
			admin.PATCH("/api-keys/:id/quota", d.apiKeyHandler.SetQuota)
			admin.PATCH("/api-keys/:id/expiry", d.apiKeyHandler.SetExpiry)
			admin.GET("/api-keys/:id/usage", d.apiKeyHandler.Usage)

			admin.GET("/usage", d.usageHandler.Stats)
		}
	}
}
