package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/routes"
)

func testConfig() config.Config {
	return config.Config{
		AppName:            "ClipStream",
		Env:                "development",
		Port:               "8080",
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
		BcryptCost:         bcrypt.MinCost,
		HashConcurrency:    2,
		IdempotencyTTL:     time.Minute,
	}
}

// newTestApp wires the full application against in-memory backends.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := logging.Discard()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	if err := routes.Setup(app, routes.Deps{Cfg: testConfig(), Logger: logger}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	if err := json.Unmarshal(payload, out); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
}

type sessionBody struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func registerAndLogin(t *testing.T, app *fiber.App) sessionBody {
	t.Helper()

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/register",
		`{"fullname":"Alice Example","email":"alice@example.com","username":"alice","password":"hunter2secret"}`))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/login",
		`{"username":"alice","password":"hunter2secret"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	var session sessionBody
	decodeBody(t, resp, &session)
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("login returned incomplete session: %+v", session)
	}
	return session
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)
	session := registerAndLogin(t, app)

	// Access a protected endpoint with the bearer token.
	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+session.AccessToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.StatusCode)
	}
	var me struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, resp, &me)
	if me.User.Username != "alice" {
		t.Fatalf("me returned %q", me.User.Username)
	}

	// Rotate the refresh token via the request body.
	resp, err = app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/refresh-token",
		`{"refreshToken":"`+session.RefreshToken+`"}`))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	var rotated sessionBody
	decodeBody(t, resp, &rotated)
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatalf("refresh token not rotated")
	}

	// Replaying the rotated-out token must fail with 401.
	resp, err = app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/refresh-token",
		`{"refreshToken":"`+session.RefreshToken+`"}`))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replay: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Logout clears the session; the fresh refresh token dies with it.
	req = jsonRequest(fiber.MethodPost, "/api/v1/users/logout", `{}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+rotated.AccessToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/refresh-token",
		`{"refreshToken":"`+rotated.RefreshToken+`"}`))
	if err != nil {
		t.Fatalf("refresh after logout: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginSetsCookiesAndRefreshReadsThem(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/login",
		`{"username":"alice","password":"hunter2secret"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var refreshCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refreshToken" {
			refreshCookie = cookie
		}
	}
	resp.Body.Close()
	if refreshCookie == nil {
		t.Fatalf("login did not set the refreshToken cookie")
	}
	if !refreshCookie.HttpOnly {
		t.Fatalf("refreshToken cookie is not http-only")
	}

	req := jsonRequest(fiber.MethodPost, "/api/v1/users/refresh-token", ``)
	req.AddCookie(refreshCookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("refresh via cookie: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh via cookie: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginFailureIsGeneric(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app)

	for name, body := range map[string]string{
		"unknown user":   `{"username":"nobody","password":"hunter2secret"}`,
		"wrong password": `{"username":"alice","password":"wrong-password"}`,
	} {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/login", body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
		var envelope struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		}
		decodeBody(t, resp, &envelope)
		if envelope.Message != "invalid username/email or password" {
			t.Fatalf("%s: expected generic message, got %q", name, envelope.Message)
		}
	}
}

func TestChannelAndHistoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app)

	// Second user subscribes to alice's channel.
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/register",
		`{"fullname":"Bob Builder","email":"bob@example.com","username":"bob","password":"hunter2secret"}`))
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	resp.Body.Close()
	resp, err = app.Test(jsonRequest(fiber.MethodPost, "/api/v1/users/login",
		`{"username":"bob","password":"hunter2secret"}`))
	if err != nil {
		t.Fatalf("login bob: %v", err)
	}
	var bob sessionBody
	decodeBody(t, resp, &bob)

	req := jsonRequest(fiber.MethodPost, "/api/v1/channels/alice/subscription", `{}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bob.AccessToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("subscribe: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Channel page reflects the subscription for bob.
	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/channels/alice", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bob.AccessToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("channel: %v", err)
	}
	var channel struct {
		Username         string `json:"username"`
		SubscriberCount  int    `json:"subscriberCount"`
		ViewerSubscribed bool   `json:"isSubscribed"`
	}
	decodeBody(t, resp, &channel)
	if channel.Username != "alice" || channel.SubscriberCount != 1 || !channel.ViewerSubscribed {
		t.Fatalf("unexpected channel payload: %+v", channel)
	}

	// Record and read back watch history.
	req = jsonRequest(fiber.MethodPost, "/api/v1/users/me/history", `{"videoRef":"video-42"}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bob.AccessToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("record watch: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record watch: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/users/me/history", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bob.AccessToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var history struct {
		History []struct {
			VideoRef string `json:"videoRef"`
		} `json:"history"`
	}
	decodeBody(t, resp, &history)
	if len(history.History) != 1 || history.History[0].VideoRef != "video-42" {
		t.Fatalf("unexpected history payload: %+v", history)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
