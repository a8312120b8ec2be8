package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
)

// Handler exposes the session endpoints: login, logout, refresh, change
// password.
type Handler struct {
	sessions *SessionService
	tokens   *Issuer
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(sessions *SessionService, tokens *Issuer) *Handler {
	return &Handler{sessions: sessions, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         account.Public `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// Login validates credentials and returns a token pair, both in the body
// and as cookies.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, pair, err := h.sessions.Login(c.UserContext(), LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	SetTokenCookies(c, pair, h.tokens.AccessTTL(), h.tokens.RefreshTTL())
	return c.Status(http.StatusOK).JSON(sessionResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout clears the stored refresh token and both cookies. Requires a
// valid access token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	if err := h.sessions.Logout(c.UserContext(), identity.ID); err != nil {
		return err
	}

	ClearTokenCookies(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh rotates a refresh token presented via cookie or body (cookie
// wins when both are present) and returns the new pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(RefreshTokenCookie)
	if presented == "" {
		var req refreshRequest
		if err := c.BodyParser(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		return apperr.Validation("refresh token is required")
	}

	user, pair, err := h.sessions.Refresh(c.UserContext(), presented)
	if err != nil {
		return err
	}

	SetTokenCookies(c, pair, h.tokens.AccessTTL(), h.tokens.RefreshTTL())
	return c.Status(http.StatusOK).JSON(sessionResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword swaps the password for the authenticated user and ends
// their other sessions by clearing the stored refresh token.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := account.IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.sessions.ChangePassword(c.UserContext(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "password changed"})
}
