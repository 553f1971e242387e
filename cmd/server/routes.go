package main

import (
	"github.com/gin-gonic/gin"
	"github.com/tracknest/tracknest/internal/handlers"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// SSE events (public route with internal token validation,
		// EventSource cannot set the Authorization header)
		sseHandler := handlers.NewSSEHandler(services.GetEventHub())
		api.GET("/events/stream", sseHandler.StreamEvents)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			userHandler := handlers.NewUserHandler(db)
			protected.GET("/users/search", userHandler.Search)

			projectHandler := handlers.NewProjectHandler(db, svc.authzService)
			protected.GET("/permissions", projectHandler.ListPermissions)
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.GET("/projects/:id", projectHandler.Get)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			protected.GET("/projects/:id/roles", projectHandler.ListRoles)
			protected.POST("/projects/:id/roles", projectHandler.CreateRole)
			protected.PUT("/projects/:id/roles/:roleId", projectHandler.UpdateRole)
			protected.DELETE("/projects/:id/roles/:roleId", projectHandler.DeleteRole)

			memberHandler := handlers.NewMemberHandler(db, svc.authzService)
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/members", memberHandler.Invite)
			protected.POST("/projects/:id/members/leave", memberHandler.Leave)
			protected.PUT("/projects/:id/members/:userId", memberHandler.ChangeRole)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			ticketHandler := handlers.NewTicketHandler(db, svc.authzService, svc.dispatcher)
			protected.GET("/projects/:id/tickets", ticketHandler.List)
			protected.POST("/projects/:id/tickets", ticketHandler.Create)
			protected.GET("/projects/:id/tickets/:ticketId", ticketHandler.Get)
			protected.PUT("/projects/:id/tickets/:ticketId", ticketHandler.Update)
			protected.DELETE("/projects/:id/tickets/:ticketId", ticketHandler.Delete)
			protected.POST("/projects/:id/tickets/:ticketId/move", ticketHandler.Move)
			protected.POST("/projects/:id/tickets/:ticketId/assign", ticketHandler.Assign)

			commentHandler := handlers.NewCommentHandler(db, svc.authzService, svc.dispatcher)
			protected.GET("/projects/:id/tickets/:ticketId/comments", commentHandler.List)
			protected.POST("/projects/:id/tickets/:ticketId/comments", commentHandler.Create)
			protected.PUT("/projects/:id/tickets/:ticketId/comments/:commentId", commentHandler.Update)
			protected.DELETE("/projects/:id/tickets/:ticketId/comments/:commentId", commentHandler.Delete)

			attachmentHandler := handlers.NewAttachmentHandler(db, svc.authzService, &svc.cfg.Storage)
			protected.GET("/projects/:id/tickets/:ticketId/attachments", attachmentHandler.List)
			protected.POST("/projects/:id/tickets/:ticketId/attachments", attachmentHandler.Upload)
			protected.GET("/projects/:id/tickets/:ticketId/attachments/:attachmentId", attachmentHandler.Download)
			protected.DELETE("/projects/:id/tickets/:ticketId/attachments/:attachmentId", attachmentHandler.Delete)

			sprintHandler := handlers.NewSprintHandler(svc.sprintService)
			protected.GET("/projects/:id/sprints", sprintHandler.List)
			protected.POST("/projects/:id/sprints", sprintHandler.Create)
			protected.GET("/projects/:id/sprints/:sprintId", sprintHandler.Get)
			protected.PUT("/projects/:id/sprints/:sprintId", sprintHandler.Update)
			protected.POST("/projects/:id/sprints/:sprintId/start", sprintHandler.Start)
			protected.POST("/projects/:id/sprints/:sprintId/close", sprintHandler.Close)

			boardHandler := handlers.NewBoardHandler(db, svc.authzService)
			protected.GET("/projects/:id/board/columns", boardHandler.ListColumns)
			protected.POST("/projects/:id/board/columns", boardHandler.CreateColumn)
			protected.PUT("/projects/:id/board/columns/order", boardHandler.ReorderColumns)
			protected.PUT("/projects/:id/board/columns/:columnId", boardHandler.UpdateColumn)
			protected.DELETE("/projects/:id/board/columns/:columnId", boardHandler.DeleteColumn)

			labelHandler := handlers.NewLabelHandler(db, svc.authzService)
			protected.GET("/projects/:id/labels", labelHandler.List)
			protected.POST("/projects/:id/labels", labelHandler.Create)
			protected.PUT("/projects/:id/labels/:labelId", labelHandler.Update)
			protected.DELETE("/projects/:id/labels/:labelId", labelHandler.Delete)

			webhookHandler := handlers.NewWebhookHandler(svc.webhookService)
			protected.GET("/projects/:id/webhooks", webhookHandler.List)
			protected.POST("/projects/:id/webhooks", webhookHandler.Create)
			protected.PUT("/projects/:id/webhooks/:webhookId", webhookHandler.Update)
			protected.DELETE("/projects/:id/webhooks/:webhookId", webhookHandler.Delete)
			protected.GET("/projects/:id/webhooks/:webhookId/deliveries", webhookHandler.ListDeliveries)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			imBotHandler := handlers.NewIMBotHandler(db)
			admin.GET("/im-bots", imBotHandler.List)
			admin.GET("/im-bots/:id", imBotHandler.Get)
			admin.POST("/im-bots", imBotHandler.Create)
			admin.PUT("/im-bots/:id", imBotHandler.Update)
			admin.DELETE("/im-bots/:id", imBotHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler(db)
			admin.GET("/logs", systemLogHandler.List)
			admin.POST("/logs/cleanup", systemLogHandler.Cleanup)

			// Manual trigger for the daily sprint housekeeping run
			admin.POST("/scheduler/run", func(c *gin.Context) {
				go svc.sprintScheduler.RunDaily()
				c.JSON(202, gin.H{"message": "scheduler run triggered"})
			})
		}
	}
}
