package account

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/apperr"
	"github.com/clipstream/clipstream/internal/media"
)

func setupHandlerApp(t *testing.T) (*fiber.App, *media.MemoryStore) {
	t.Helper()
	store := media.NewMemoryStore()
	handler := NewHandler(NewService(NewMemoryRepository(), plainHasher{}), store)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.Status(appErr.Status).JSON(fiber.Map{"message": appErr.Message})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
		},
	})
	app.Post("/register", handler.Register)
	return app, store
}

func TestRegisterHandlerJSON(t *testing.T) {
	app, store := setupHandlerApp(t)

	body := `{"fullname":"Alice Example","email":"alice@example.com","username":"alice","password":"hunter2secret"}`
	req := httptest.NewRequest(fiber.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload struct {
		User Public `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if payload.User.Username != "alice" {
		t.Fatalf("unexpected user %+v", payload.User)
	}
	if store.Len() != 0 {
		t.Fatalf("no files were uploaded, store holds %d", store.Len())
	}
}

func TestRegisterHandlerMultipartWithAvatar(t *testing.T) {
	app, store := setupHandlerApp(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"fullname": "Alice Example",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "hunter2secret",
	} {
		if err := form.WriteField(field, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	file, err := form.CreateFormFile("avatar", "selfie.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(file, "fake-png-bytes"); err != nil {
		t.Fatalf("write file: %v", err)
	}
	form.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/register", &buf)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload struct {
		User Public `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if payload.User.AvatarURL == "" {
		t.Fatalf("avatar URL missing from response")
	}
	if !strings.HasPrefix(payload.User.AvatarURL, "memory://avatars/") {
		t.Fatalf("unexpected avatar URL %s", payload.User.AvatarURL)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 uploaded object, got %d", store.Len())
	}
}

func TestRegisterHandlerRejectsBadBody(t *testing.T) {
	app, _ := setupHandlerApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/register", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
