package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/auth"
)

// RegisterAuthRoutes wires the session lifecycle endpoints under /users.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, authRequired, rateLimiter fiber.Handler) {
	group := r.Group("/users")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh-token", h.Refresh)
	group.Post("/logout", authRequired, h.Logout)
	group.Post("/change-password", authRequired, h.ChangePassword)
}
