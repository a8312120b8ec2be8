package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
)

// genericCredentialsMsg is returned for both unknown-identifier and
// wrong-password failures so login responses cannot be used to enumerate
// usernames.
const genericCredentialsMsg = "invalid username/email or password"

const minPasswordLength = 8

// SessionService orchestrates login, logout, refresh rotation, and
// password change over the hasher, issuer, and account store.
type SessionService struct {
	users  account.Repository
	hasher *Hasher
	tokens *Issuer
}

// NewSessionService builds the session controller.
func NewSessionService(users account.Repository, hasher *Hasher, tokens *Issuer) *SessionService {
	return &SessionService{users: users, hasher: hasher, tokens: tokens}
}

// LoginInput carries the submitted credentials. At least one of Username
// or Email must be set.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials, issues a token pair, and overwrites the
// stored refresh token. Whatever token was stored before, whether from a
// previous login or a rotation, is invalidated by the overwrite.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (account.User, TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" && email == "" {
		return account.User{}, TokenPair{}, apperr.Validation("username or email is required")
	}

	user, err := s.users.FindByIdentifier(ctx, username, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.User{}, TokenPair{}, apperr.Authentication(genericCredentialsMsg)
		}
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}

	if !s.hasher.Verify(ctx, input.Password, user.PasswordHash) {
		return account.User{}, TokenPair{}, apperr.Authentication(genericCredentialsMsg)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}

	// If this write fails the client must not end up holding tokens the
	// server never recorded, so the whole login fails.
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}

	return user, pair, nil
}

// Logout clears the stored refresh token. Idempotent: logging out twice is
// not an error.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Refresh exchanges a valid, currently-stored refresh token for a new
// pair, rotating the stored value. Replaying a token that has already been
// rotated out fails, which is the reuse/theft detector.
func (s *SessionService) Refresh(ctx context.Context, presented string) (account.User, TokenPair, error) {
	if presented == "" {
		return account.User{}, TokenPair{}, apperr.Validation("refresh token is required")
	}

	subject, err := s.tokens.Verify(presented, ClassRefresh)
	if err != nil {
		return account.User{}, TokenPair{}, apperr.Authorization("invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.User{}, TokenPair{}, apperr.NotFound("user not found")
		}
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}

	// Byte-for-byte compare against the stored value and overwrite in one
	// conditional update. Of two concurrent rotations presenting the same
	// token, exactly one wins; the loser sees a failed precondition and is
	// treated like any other stale replay.
	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return account.User{}, TokenPair{}, apperr.Internal(err)
	}
	if !rotated {
		return account.User{}, TokenPair{}, apperr.StaleToken("refresh token mismatch")
	}

	return user, pair, nil
}

// ChangePassword verifies the old password, stores a new hash, and clears
// the stored refresh token so a password change terminates other sessions.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.Validation("old and new passwords are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperr.Validation("password must be at least 8 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	if !s.hasher.Verify(ctx, oldPassword, user.PasswordHash) {
		return apperr.Authentication("incorrect old password")
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return apperr.Internal(err)
	}

	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperr.Internal(err)
	}

	return nil
}
