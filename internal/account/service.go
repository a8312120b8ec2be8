package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/apperr"
)

// PasswordHasher is the slice of the hashing contract registration needs.
// Satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) ([]byte, error)
}

const minPasswordLength = 8

// Service manages account lifecycle.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService creates a new account service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// RegisterInput captures the data required to create an account. Media URLs
// are supplied by the caller after upload; the service never touches file
// contents.
type RegisterInput struct {
	FullName  string
	Email     string
	Username  string
	Password  string
	AvatarURL string
	CoverURL  string
}

// Register validates input, hashes the password, and stores the new user.
// The plaintext password never reaches the repository.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))

	if fullName == "" || email == "" || username == "" || input.Password == "" {
		return User{}, apperr.Validation("fullname, email, username and password are required")
	}
	if !strings.Contains(email, "@") {
		return User{}, apperr.Validation("email is not valid")
	}
	if len(input.Password) < minPasswordLength {
		return User{}, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return User{}, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		AvatarURL:    input.AvatarURL,
		CoverURL:     input.CoverURL,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, apperr.Conflict("user already exists")
		}
		return User{}, apperr.Internal(err)
	}

	return user, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}

// GetByUsername fetches an account by its unique username.
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return User{}, apperr.Validation("username is required")
	}
	user, err := s.repo.FindByIdentifier(ctx, username, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}

// UpdateProfile changes the mutable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, id, fullName, email string) (User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return User{}, apperr.Validation("fullname and email are required")
	}
	user, err := s.repo.UpdateProfile(ctx, id, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return User{}, apperr.NotFound("user not found")
		case errors.Is(err, ErrDuplicate):
			return User{}, apperr.Conflict("email already in use")
		default:
			return User{}, apperr.Internal(err)
		}
	}
	return user, nil
}

// UpdateAvatar stores the hosted avatar URL.
func (s *Service) UpdateAvatar(ctx context.Context, id, url string) (User, error) {
	if url == "" {
		return User{}, apperr.Validation("avatar is required")
	}
	user, err := s.repo.UpdateAvatar(ctx, id, url)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}

// UpdateCover stores the hosted cover image URL.
func (s *Service) UpdateCover(ctx context.Context, id, url string) (User, error) {
	if url == "" {
		return User{}, apperr.Validation("cover image is required")
	}
	user, err := s.repo.UpdateCover(ctx, id, url)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}
