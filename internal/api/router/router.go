package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvaldes/apptrack/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "apptrack",
		})
	})

	appHandler := handler.NewApplicationHandler(deps)
	statsHandler := handler.NewStatsHandler(deps)
	transferHandler := handler.NewTransferHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		apps := v1.Group("/applications")
		{
			apps.POST("", appHandler.CreateApplication)
			apps.GET("", appHandler.ListApplications)
			apps.GET("/:id", appHandler.GetApplication)
			apps.PUT("/:id", appHandler.UpdateApplication)
			apps.DELETE("/:id", appHandler.DeleteApplication)
			apps.POST("/:id/status", appHandler.ChangeStatus)
		}

		v1.GET("/dashboard", statsHandler.Dashboard)
		v1.GET("/stats", statsHandler.Stats)
		v1.GET("/followups", statsHandler.FollowUps)

		v1.GET("/export/csv", transferHandler.ExportCSV)
		v1.POST("/import/csv", transferHandler.ImportCSV)
	}

	return r
}
