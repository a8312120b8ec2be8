package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/account"
)

// RegisterAccountRoutes wires registration and profile endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, authRequired fiber.Handler) {
	group := r.Group("/users")
	group.Post("/register", h.Register)
	group.Get("/me", authRequired, h.Me)
	group.Patch("/me", authRequired, h.UpdateMe)
	group.Patch("/me/avatar", authRequired, h.UpdateAvatar)
	group.Patch("/me/cover", authRequired, h.UpdateCover)
}
