package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/social"
)

// RegisterSocialRoutes wires channel profiles, subscriptions, and watch
// history.
func RegisterSocialRoutes(r fiber.Router, h *social.Handler, authRequired, authOptional fiber.Handler) {
	users := r.Group("/users")
	users.Get("/me/history", authRequired, h.History)
	users.Post("/me/history", authRequired, h.RecordWatch)

	channels := r.Group("/channels")
	channels.Get("/:username", authOptional, h.Channel)
	channels.Post("/:username/subscription", authRequired, h.Subscribe)
	channels.Delete("/:username/subscription", authRequired, h.Unsubscribe)
}
