package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/config"
	finhandler "github.com/confecta/confecta/internal/finance/handler"
	"github.com/confecta/confecta/internal/middleware"
	notifhandler "github.com/confecta/confecta/internal/notify/handler"
	"github.com/confecta/confecta/internal/production/handler"
)

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	prod *handler.Handlers,
	pendency *finhandler.PendencyHandler,
	notification *notifhandler.NotificationHandler,
	sseH *notifhandler.SSEHandler,
) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// Stage catalog
		stages := api.Group("/stages")
		{
			stages.GET("", prod.Stage.List)
			stages.POST("", prod.Stage.Create)
			stages.GET("/:id", prod.Stage.Get)
			stages.PUT("/:id", prod.Stage.Update)
			stages.DELETE("/:id", prod.Stage.Delete)
		}

		// Products
		products := api.Group("/products")
		{
			products.GET("", prod.Product.List)
			products.POST("", prod.Product.Create)
			products.GET("/:id", prod.Product.Get)
			products.PUT("/:id", prod.Product.Update)
			products.DELETE("/:id", prod.Product.Delete)
		}

		// Facções
		factions := api.Group("/factions")
		{
			factions.GET("", prod.Faction.List)
			factions.POST("", prod.Faction.Create)
			factions.GET("/:id", prod.Faction.Get)
			factions.PUT("/:id", prod.Faction.Update)
			factions.DELETE("/:id", prod.Faction.Delete)
		}

		// Production orders
		orders := api.Group("/orders")
		{
			orders.GET("", prod.Order.List)
			orders.POST("", prod.Order.Create)
			orders.GET("/:id", prod.Order.Get)
			orders.PUT("/:id", prod.Order.Update)
			orders.PUT("/:id/status", prod.Order.UpdateStatus)
			orders.DELETE("/:id", prod.Order.Delete)
			orders.GET("/:id/activity", prod.Order.ActivityLog)
			orders.POST("/:id/progress", prod.Progress.Initialize)
			orders.GET("/:id/progress", prod.Progress.GetByOrder)
		}

		// Stage tracker
		progress := api.Group("/progress")
		{
			progress.PUT("/:id/stages/:stageId/finalize", prod.Progress.FinalizeStage)
			progress.PUT("/:id/stages/:stageId/pause", prod.Progress.PauseStage)
			progress.PUT("/:id/stages/:stageId/resume", prod.Progress.ResumeStage)
		}

		// Financial ledger
		pendencies := api.Group("/pendencies")
		{
			pendencies.GET("", pendency.List)
			pendencies.GET("/:id", pendency.Get)
			pendencies.DELETE("/:id", pendency.Delete)
			pendencies.POST("/:id/pay", pendency.MarkAsPaid)
		}
		api.GET("/payments", pendency.ListPayments)
		finance := api.Group("/finance")
		{
			finance.GET("/summary", pendency.Summary)
			finance.GET("/settings", pendency.GetSettings)
			finance.PUT("/settings", pendency.UpdateSettings)
		}

		// Notifications
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notification.List)
			notifications.GET("/unread-count", notification.UnreadCount)
			notifications.PUT("/read-all", notification.MarkAllRead)
			notifications.PUT("/:id/read", notification.MarkRead)
			notifications.DELETE("/:id", notification.Delete)
		}

		// SSE
		api.GET("/sse/events", sseH.Stream)
	}
}
