package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/api/handlers"
	"github.com/coldreach/warmstack/api/middleware"
	"github.com/coldreach/warmstack/internal/cron"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, cronManager *cron.CronManager, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// setup handlers
	apiHandlers := handlers.InitHandlers(s, repos)

	// Health check endpoint (no auth)
	r.GET("/health", handlers.HealthCheck)

	// Open and click tracking; fetched by recipient mail clients, never authenticated
	tracking := r.Group("/t")
	tracking.Use(middleware.TracingMiddleware())
	{
		tracking.GET("/:id/px.gif", apiHandlers.Tracking.Pixel())
		tracking.GET("/:id/l", apiHandlers.Tracking.Link())
	}

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version, auth and tracing
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TracingMiddleware())
	{
		// Mailbox endpoints
		mailboxes := api.Group("/mailboxes")
		{
			mailboxes.GET("", apiHandlers.Mailboxes.List())
			mailboxes.POST("", apiHandlers.Mailboxes.Create())
			mailboxes.GET("/:id", apiHandlers.Mailboxes.Get())
			mailboxes.PUT("/:id", apiHandlers.Mailboxes.Update())
			mailboxes.DELETE("/:id", apiHandlers.Mailboxes.Delete())
			mailboxes.POST("/:id/test-connection", apiHandlers.Mailboxes.TestConnection())
			mailboxes.POST("/:id/profile", apiHandlers.Mailboxes.ApplyProfile())

			// Per-mailbox warmup state
			mailboxes.GET("/:id/health", apiHandlers.Warmup.Health())
			mailboxes.GET("/:id/schedule", apiHandlers.Warmup.Schedule())
			mailboxes.GET("/:id/eligibility", apiHandlers.Warmup.Eligibility())
			mailboxes.POST("/:id/recover", apiHandlers.Warmup.RecoverFromBlacklist())

			// Per-mailbox deliverability checks
			mailboxes.POST("/:id/checks/dns", apiHandlers.Checks.RunDNSCheck())
			mailboxes.POST("/:id/checks/blacklist", apiHandlers.Checks.RunBlacklistCheck())
		}

		// On-demand warmup cycle triggers, normally owned by the scheduler
		warmup := api.Group("/warmup")
		{
			warmup.POST("/assessment", apiHandlers.Warmup.RunAssessment())
			warmup.POST("/peer-cycle", apiHandlers.Warmup.RunPeerCycle())
			warmup.POST("/auto-reply", apiHandlers.Warmup.RunAutoReplyCycle())
			warmup.POST("/recovery", apiHandlers.Warmup.RunRecoveryCheck())
			warmup.GET("/emails", apiHandlers.Warmup.ListEmails())
		}

		// Fleet-wide deliverability sweeps
		checks := api.Group("/checks")
		{
			checks.POST("/dns", apiHandlers.Checks.RunAllDNSChecks())
			checks.POST("/blacklist", apiHandlers.Checks.RunAllBlacklistChecks())
		}

		// Alert endpoints
		alerts := api.Group("/alerts")
		{
			alerts.GET("", apiHandlers.Alerts.List())
			alerts.POST("/read-all", apiHandlers.Alerts.MarkAllRead())
			alerts.POST("/:id/read", apiHandlers.Alerts.MarkRead())
		}

		// Ramp profile endpoints
		profiles := api.Group("/profiles")
		{
			profiles.GET("", apiHandlers.Profiles.List())
			profiles.POST("", apiHandlers.Profiles.Create())
			profiles.GET("/:id", apiHandlers.Profiles.Get())
			profiles.PUT("/:id", apiHandlers.Profiles.Update())
			profiles.DELETE("/:id", apiHandlers.Profiles.Delete())
		}

		// Reports
		api.GET("/reports/warmup", apiHandlers.Reports.Export())

		// Scheduler status
		api.GET("/scheduler", func(c *gin.Context) {
			if cronManager == nil {
				c.JSON(http.StatusOK, gin.H{"jobs": []cron.JobStatus{}})
				return
			}
			c.JSON(http.StatusOK, gin.H{"jobs": cronManager.Status()})
		})
	}
}
