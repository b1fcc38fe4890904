package handler

import "github.com/gofiber/fiber/v2"

// Routes groups the handlers mounted by Register.
type Routes struct {
	Health       *HealthHandler
	Favorites    *FavoriteHandler
	Notification *NotificationHandler
	Claim        *ClaimHandler
	Badges       *BadgeHandler
	Verifier     TokenVerifier
}

// Register mounts the member API on app.
func Register(app *fiber.App, r Routes) {
	app.Get("/health", r.Health.Check)

	badges := app.Group("/api/badges")
	badges.Get("/tabs", r.Badges.Tabs)
	badges.Get("/festivals", r.Badges.Festivals)

	member := app.Group("/api/member", RequireMember(r.Verifier))
	member.Get("/me", Me)
	member.Get("/favorites", r.Favorites.List)
	member.Post("/favorites/toggle", r.Favorites.Toggle)
	member.Get("/notifications", r.Notification.List)
	member.Post("/notifications/read-all", r.Notification.MarkAllRead)
	member.Post("/notifications/claim", r.Claim.Claim)
	member.Get("/notifications/:id", r.Notification.Get)
}
