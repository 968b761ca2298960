package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/push"
	"github.com/spec-kit/servicedesk/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Mentions       *handlers.MentionsHandler
	Activities     *handlers.ActivitiesHandler
	AuthMiddleware *auth.Middleware
	Tokens         *auth.TokenManager
	Limiter        *ratelimit.Limiter
	Hub            *push.Hub
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes. The general API budget covers every
// route except auth, which has its own tighter budget; health probes and the
// websocket upgrade are unmetered.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/ws", push.Upgrade, push.Handler(cfg.Hub, cfg.Tokens, cfg.Logger))

	apiLimit := RateLimit(cfg.Limiter, ratelimit.ClassAPI)
	authLimit := RateLimit(cfg.Limiter, ratelimit.ClassAuth)

	authGroup := app.Group("/auth", authLimit)
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	tickets := app.Group("/tickets", apiLimit)

	// Public contact form; a valid token links the ticket to the caller.
	tickets.Post("/", cfg.AuthMiddleware.OptionalHandle, cfg.Tickets.Create)

	authed := tickets.Group("", cfg.AuthMiddleware.Handle)
	authed.Get("/mine", cfg.Tickets.ListMine)

	staff := authed.Group("", auth.RequireRoles(domain.RoleAdmin, domain.RoleSupport))
	staff.Get("/", cfg.Tickets.List)
	staff.Get("/stats", cfg.Tickets.Stats)
	staff.Get("/stats/detailed", cfg.Tickets.DetailedStats)
	staff.Get("/support-staff", cfg.Tickets.SupportStaff)

	authed.Get("/:id", cfg.Tickets.Get)
	authed.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	authed.Patch("/:id/assign", cfg.Tickets.Assign)
	authed.Patch("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.Update)

	authed.Post("/:id/comments", cfg.Comments.Create)
	authed.Get("/:id/comments", cfg.Comments.List)

	mentions := app.Group("/mentions", apiLimit, cfg.AuthMiddleware.Handle)
	mentions.Get("/unread", cfg.Mentions.Unread)
	mentions.Post("/read-all", cfg.Mentions.MarkAllRead)
	mentions.Post("/:id/read", cfg.Mentions.MarkRead)

	activities := app.Group("/activities", apiLimit, cfg.AuthMiddleware.Handle,
		auth.RequireRoles(domain.RoleAdmin, domain.RoleSupport))
	activities.Get("/", cfg.Activities.List)
	activities.Get("/stats", cfg.Activities.Stats)
}
