package social

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
)

// Handler exposes channel profiles, subscriptions, and watch history.
type Handler struct {
	service *Service
}

// NewHandler constructs the social HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Channel returns a channel's public profile with subscription stats. The
// viewer is optional; when logged in the response says whether they are
// subscribed.
func (h *Handler) Channel(c *fiber.Ctx) error {
	var viewerID string
	if identity, ok := account.IdentityFromCtx(c); ok {
		viewerID = identity.ID
	}

	profile, err := h.service.ChannelProfile(c.UserContext(), c.Params("username"), viewerID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// Subscribe subscribes the authenticated user to the named channel.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	if err := h.service.Subscribe(c.UserContext(), c.Params("username"), identity.ID); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "subscribed"})
}

// Unsubscribe removes the authenticated user's subscription.
func (h *Handler) Unsubscribe(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	if err := h.service.Unsubscribe(c.UserContext(), c.Params("username"), identity.ID); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "unsubscribed"})
}

type watchRequest struct {
	VideoRef string `json:"videoRef"`
}

// RecordWatch appends a video to the authenticated user's watch history.
func (h *Handler) RecordWatch(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	var req watchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.service.RecordWatch(c.UserContext(), identity.ID, req.VideoRef); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "watch recorded"})
}

// History returns the authenticated user's watch history, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	events, err := h.service.History(c.UserContext(), identity.ID, c.QueryInt("limit"))
	if err != nil {
		return err
	}
	if events == nil {
		events = []WatchEvent{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"history": events})
}
