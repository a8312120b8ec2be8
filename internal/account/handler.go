package account

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/apperr"
	"github.com/clipstream/clipstream/internal/media"
)

// maxImageBytes caps uploaded avatar and cover images.
const maxImageBytes = 10 << 20

// Handler exposes registration and profile endpoints.
type Handler struct {
	service *Service
	store   media.Store
}

// NewHandler constructs the account HTTP handler.
func NewHandler(service *Service, store media.Store) *Handler {
	return &Handler{service: service, store: store}
}

type registerRequest struct {
	FullName string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register creates a new account. Accepts JSON or multipart form data; the
// multipart form may carry optional avatar and coverImage files, which are
// uploaded before the account is stored.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	avatarURL, err := h.uploadFormImage(c, "avatar", "avatars")
	if err != nil {
		return err
	}
	coverURL, err := h.uploadFormImage(c, "coverImage", "covers")
	if err != nil {
		return err
	}

	user, err := h.service.Register(c.UserContext(), RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user.Public()})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	identity, ok := IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": identity})
}

type updateProfileRequest struct {
	FullName string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
}

// UpdateMe changes the authenticated user's full name and email.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	identity, ok := IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), identity.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user.Public()})
}

// UpdateAvatar uploads a new avatar image and stores its hosted URL.
func (h *Handler) UpdateAvatar(c *fiber.Ctx) error {
	return h.updateImage(c, "avatar", "avatars", h.service.UpdateAvatar)
}

// UpdateCover uploads a new cover image and stores its hosted URL.
func (h *Handler) UpdateCover(c *fiber.Ctx) error {
	return h.updateImage(c, "coverImage", "covers", h.service.UpdateCover)
}

func (h *Handler) updateImage(c *fiber.Ctx, field, prefix string, apply func(ctx context.Context, id, url string) (User, error)) error {
	identity, ok := IdentityFromCtx(c)
	if !ok {
		return apperr.Authorization("invalid access token")
	}

	url, err := h.uploadFormImage(c, field, prefix)
	if err != nil {
		return err
	}
	if url == "" {
		return apperr.Validation(field + " file is required")
	}

	user, err := apply(c.UserContext(), identity.ID, url)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user.Public()})
}

// uploadFormImage pushes the named multipart file to the media store and
// returns the hosted URL. Returns an empty URL when the field is absent.
func (h *Handler) uploadFormImage(c *fiber.Ctx, field, prefix string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// No multipart body or field not present.
		return "", nil
	}
	if header.Size > maxImageBytes {
		return "", apperr.Validation(field + " file is too large")
	}
	if h.store == nil {
		return "", apperr.Internal(errors.New("media store not configured"))
	}

	file, err := header.Open()
	if err != nil {
		return "", apperr.Validation("could not read " + field + " file")
	}
	defer file.Close()

	url, err := h.store.Upload(c.UserContext(), media.ObjectKey(prefix, header.Filename),
		contentType(header), file, header.Size)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return url, nil
}

func contentType(header *multipart.FileHeader) string {
	return header.Header.Get(fiber.HeaderContentType)
}
