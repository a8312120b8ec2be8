package auth

import (
	"context"
	"log/slog"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
)

// TokenVerifier resolves a presented access token to a live identity. It is
// stateless apart from the single user read, so any number of requests may
// verify concurrently.
type TokenVerifier struct {
	tokens *Issuer
	users  account.Repository
	logger *slog.Logger
}

// NewTokenVerifier wires the verifier's two collaborators.
func NewTokenVerifier(tokens *Issuer, users account.Repository, logger *slog.Logger) *TokenVerifier {
	return &TokenVerifier{tokens: tokens, users: users, logger: logger}
}

// Verify validates the token and resolves its subject. Every failure maps
// to the same outward authorization error; the concrete reason is logged
// only, so a caller learns nothing about why a token was rejected.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (account.Public, error) {
	reject := func(reason string, err error) (account.Public, error) {
		v.logger.Debug("access token rejected", "reason", reason, "error", err)
		return account.Public{}, apperr.Authorization("invalid access token")
	}

	if token == "" {
		return reject("missing token", nil)
	}

	subject, err := v.tokens.Verify(token, ClassAccess)
	if err != nil {
		return reject("signature or expiry", err)
	}

	user, err := v.users.FindByID(ctx, subject)
	if err != nil {
		return reject("unknown subject", err)
	}

	return user.Public(), nil
}
