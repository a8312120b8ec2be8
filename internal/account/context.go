package account

import "github.com/gofiber/fiber/v2"

// identityKey is where the auth middleware stores the resolved identity
// for the rest of the request pipeline.
const identityKey = "account.identity"

// StoreIdentity attaches the verified identity to the request.
func StoreIdentity(c *fiber.Ctx, identity Public) {
	c.Locals(identityKey, identity)
}

// IdentityFromCtx returns the identity attached by the auth middleware.
func IdentityFromCtx(c *fiber.Ctx) (Public, bool) {
	identity, ok := c.Locals(identityKey).(Public)
	return identity, ok
}
