package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/logging"
)

func setupAuthApp(t *testing.T) (*fiber.App, *auth.Issuer, account.User) {
	t.Helper()
	repo := account.NewMemoryRepository()
	user := account.User{
		ID:       "4f2d7b3a-9d5e-4c1b-8e6f-1a2b3c4d5e6f",
		Username: "alice",
		Email:    "alice@example.com",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tokens := auth.NewIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	verifier := auth.NewTokenVerifier(tokens, repo, logging.Discard())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.Status(appErr.Status).JSON(fiber.Map{"message": appErr.Message})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
		},
	})
	app.Get("/private", Auth(verifier), func(c *fiber.Ctx) error {
		identity, _ := account.IdentityFromCtx(c)
		return c.JSON(fiber.Map{"username": identity.Username})
	})
	app.Get("/public", OptionalAuth(verifier), func(c *fiber.Ctx) error {
		identity, ok := account.IdentityFromCtx(c)
		return c.JSON(fiber.Map{"known": ok, "username": identity.Username})
	})

	return app, tokens, user
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	app, tokens, user := setupAuthApp(t)

	token, err := tokens.IssueAccess(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if body.Username != "alice" {
		t.Fatalf("expected alice, got %q", body.Username)
	}
}

func TestAuthAcceptsCookie(t *testing.T) {
	app, tokens, user := setupAuthApp(t)

	token, err := tokens.IssueAccess(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	app, tokens, user := setupAuthApp(t)

	refresh, err := tokens.IssueRefresh(user.ID)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	cases := map[string]func(*http.Request){
		"no token":      func(*http.Request) {},
		"garbage":       func(r *http.Request) { r.Header.Set(fiber.HeaderAuthorization, "Bearer junk") },
		"refresh token": func(r *http.Request) { r.Header.Set(fiber.HeaderAuthorization, "Bearer "+refresh) },
	}
	for name, decorate := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
		decorate(req)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
}

func TestOptionalAuthPassesAnonymously(t *testing.T) {
	app, tokens, user := setupAuthApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/public", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for anonymous, got %d", resp.StatusCode)
	}

	var body struct {
		Known bool `json:"known"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if body.Known {
		t.Fatalf("anonymous request resolved an identity")
	}

	token, err := tokens.IssueAccess(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(fiber.MethodGet, "/public", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if !body.Known {
		t.Fatalf("valid token not attached by optional auth")
	}
}
