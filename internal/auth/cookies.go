package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie is the cookie carrying the refresh token.
	RefreshTokenCookie = "refreshToken"
)

// Both cookies are HttpOnly and Secure: never script-readable, never sent
// over plaintext transport.
func authCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// SetTokenCookies writes the pair as cookies with expiries matching the
// token TTLs.
func SetTokenCookies(c *fiber.Ctx, pair TokenPair, accessTTL, refreshTTL time.Duration) {
	now := time.Now()
	c.Cookie(authCookie(AccessTokenCookie, pair.AccessToken, now.Add(accessTTL)))
	c.Cookie(authCookie(RefreshTokenCookie, pair.RefreshToken, now.Add(refreshTTL)))
}

// ClearTokenCookies expires both cookies.
func ClearTokenCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(authCookie(AccessTokenCookie, "", expired))
	c.Cookie(authCookie(RefreshTokenCookie, "", expired))
}
