package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Escalations    *handlers.EscalationsHandler
	Teams          *handlers.TeamsHandler
	Analytics      *handlers.AnalyticsHandler
	Notifications  *handlers.NotificationsHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/categories", cfg.Directory.ListCategories)
	app.Get("/districts", cfg.Directory.ListDistricts)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := authed.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/nearby", cfg.Tickets.Nearby)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/transition", auth.RequireStaff(), cfg.Tickets.Transition)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/follow", cfg.Tickets.Follow)
	tickets.Delete("/:id/follow", cfg.Tickets.Unfollow)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/photos", cfg.Tickets.AddPhoto)
	tickets.Post("/:id/feedback", cfg.Tickets.SubmitFeedback)
	tickets.Get("/:id/feedback", cfg.Tickets.GetFeedback)
	tickets.Get("/:id/escalations", cfg.Escalations.ListByTicket)
	tickets.Post("/:id/reassign", auth.RequireRole(domain.RoleManager), cfg.Teams.ReassignTicket)

	escalations := authed.Group("/escalations", auth.RequireStaff())
	escalations.Post("", cfg.Escalations.Request)
	escalations.Get("/pending", auth.RequireRole(domain.RoleManager), cfg.Escalations.ListPending)
	escalations.Get("/:id", cfg.Escalations.Get)
	escalations.Post("/:id/review", auth.RequireRole(domain.RoleManager), cfg.Escalations.Review)

	teams := authed.Group("/teams")
	teams.Get("", cfg.Teams.List)
	teams.Get("/:id", cfg.Teams.Get)
	teams.Post("", auth.RequireRole(domain.RoleManager), cfg.Teams.Create)
	teams.Put("/:id", auth.RequireRole(domain.RoleManager), cfg.Teams.Update)
	teams.Delete("/:id", auth.RequireRole(domain.RoleManager), cfg.Teams.Delete)

	analytics := authed.Group("/analytics", auth.RequireStaff())
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/teams", cfg.Analytics.Teams)
	analytics.Get("/categories", cfg.Analytics.Categories)
	analytics.Get("/neighborhoods", cfg.Analytics.Neighborhoods)
	analytics.Get("/feedback", cfg.Analytics.FeedbackTrends)

	notifications := authed.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	admin := authed.Group("/admin", auth.RequireRole(domain.RoleManager))
	admin.Post("/users", cfg.Directory.CreateUser)
	admin.Get("/users", cfg.Directory.ListUsers)
	admin.Get("/users/:id", cfg.Directory.GetUser)
	admin.Put("/users/:id", cfg.Directory.UpdateUser)
	admin.Delete("/users/:id", cfg.Directory.DeactivateUser)
	admin.Post("/categories", cfg.Directory.CreateCategory)
	admin.Put("/categories/:id", cfg.Directory.UpdateCategory)
	admin.Delete("/categories/:id", cfg.Directory.DeleteCategory)
}
