// Package routes wires HTTP routes to their handlers.
package routes

import (
	"net/http"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/container"
	"github.com/CircuitDesk/circuitdesk-go/internal/presentation/http/handlers"
	"github.com/CircuitDesk/circuitdesk-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the gin engine with all application routes.
func SetupRoutes(c *container.Container) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)
	leadHandlers := handlers.NewLeadHandlers(c.LeadService, c.Logger, c.PerfTracker)
	caseHandlers := handlers.NewCaseHandlers(c.CaseService, c.Logger, c.PerfTracker)
	systemHandlers := handlers.NewSystemHandlers(c)
	streamHandlers := handlers.NewStreamHandlers(c.Broadcaster, c.AuthService, c.Logger)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.GET("/status", authHandlers.GetAuthStatus)
			auth.POST("/register", authHandlers.AuthMiddleware(), authHandlers.AdminOnlyMiddleware(), authHandlers.PostRegister)
			auth.POST("/password", authHandlers.AuthMiddleware(), authHandlers.PostChangePassword)
		}

		authenticated := api.Group("")
		authenticated.Use(authHandlers.AuthMiddleware())
		{
			authenticated.GET("/users", authHandlers.AdminOnlyMiddleware(), authHandlers.GetUsers)

			authenticated.GET("/leads", leadHandlers.GetLeads)
			authenticated.GET("/leads/search", leadHandlers.GetLeadSearch)
			authenticated.GET("/leads/:ckt", leadHandlers.GetLeadByCkt)
			authenticated.POST("/leads", leadHandlers.PostLead)

			authenticated.GET("/cases", caseHandlers.GetCases)
			authenticated.POST("/cases", caseHandlers.PostCase)
			authenticated.PUT("/cases/:id", caseHandlers.PutCase)
			authenticated.PATCH("/cases/:id/status", caseHandlers.PatchCaseStatus)
			authenticated.DELETE("/cases/:id", caseHandlers.DeleteCase)

			authenticated.GET("/db/status", systemHandlers.GetDatabaseStatus)
			authenticated.GET("/system/performance", systemHandlers.GetPerformanceStats)
			authenticated.GET("/system/logs/levels", authHandlers.AdminOnlyMiddleware(), systemHandlers.GetLogLevels)
			authenticated.POST("/system/logs/levels", authHandlers.AdminOnlyMiddleware(), systemHandlers.SetLogLevel)
		}

		api.GET("/events/stream", streamHandlers.GetEventStream)
	}

	return router
}
