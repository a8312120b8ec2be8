package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/auth"
)

// Auth gates protected routes: it extracts the access token from the
// Authorization header or the accessToken cookie (header wins), verifies
// it, and threads the resolved identity through the request context.
func Auth(verifier *auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := verifier.Verify(c.UserContext(), requestToken(c))
		if err != nil {
			return err
		}
		account.StoreIdentity(c, identity)
		return c.Next()
	}
}

// OptionalAuth attaches an identity when a valid access token is present
// and lets the request through anonymously otherwise. Used by public pages
// that personalize for logged-in viewers.
func OptionalAuth(verifier *auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := requestToken(c)
		if token != "" {
			if identity, err := verifier.Verify(c.UserContext(), token); err == nil {
				account.StoreIdentity(c, identity)
			}
		}
		return c.Next()
	}
}

func requestToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return c.Cookies(auth.AccessTokenCookie)
}
