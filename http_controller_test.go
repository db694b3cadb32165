package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/cramdeck/go-auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(auther auth.Authenticator) *fiber.App {
	app := fiber.New()
	auth.RegisterAuthRoutes(app, auth.WithControllerAuther(auther))
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRegisterPost(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Register", mock.Anything, "new@example.com", "secret-password", "New User").
			Return(nil)

		app := newTestApp(auther)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/register",
			`{"email":"new@example.com","fullName":"New User","password":"secret-password"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(auth.ErrEmailInUse)

		app := newTestApp(auther)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/register",
			`{"email":"taken@example.com","fullName":"Who Ever","password":"secret-password"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "auth_email_in_use", errObj["code"])
	})

	t.Run("invalid payload", func(t *testing.T) {
		auther := new(MockAuthenticator)
		app := newTestApp(auther)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/register",
			`{"email":"not-an-email","fullName":"X","password":"short"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		auther.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newTestApp(new(MockAuthenticator))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/register", `{not json`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginPost(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Login", mock.Anything, "user@example.com", "secret-password").
			Return(&auth.LoginResult{
				AccessToken:  "access.jwt",
				RefreshToken: "refresh.jwt",
				User:         &auth.PublicProfile{Email: "user@example.com"},
			}, nil)

		app := newTestApp(auther)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/login",
			`{"email":"user@example.com","password":"secret-password"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "access.jwt", body["access_token"])
		assert.Equal(t, "refresh.jwt", body["refresh_token"])

		user := body["user"].(map[string]any)
		assert.Equal(t, "user@example.com", user["email"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, auth.ErrBadCredentials)

		app := newTestApp(auther)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/login",
			`{"email":"user@example.com","password":"wrong"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "auth_bad_credentials", errObj["code"])
	})

	t.Run("missing password", func(t *testing.T) {
		app := newTestApp(new(MockAuthenticator))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/login",
			`{"email":"user@example.com"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestRefreshPost(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Refresh", mock.Anything, "Bearer refresh.jwt").
			Return("new-access.jwt", nil)

		app := newTestApp(auther)

		req := httptest.NewRequest(fiber.MethodPost, "/refresh", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer refresh.jwt")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "new-access.jwt", body["access_token"])
	})

	t.Run("missing header", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Refresh", mock.Anything, "").
			Return("", auth.ErrUnauthorized)

		app := newTestApp(auther)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/refresh", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProfileGet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Profile", mock.Anything, "Bearer access.jwt").
			Return(&auth.PublicProfile{
				Email:     "user@example.com",
				FullName:  "Test User",
				Role:      auth.RoleUser,
				Onboarded: true,
			}, nil)

		app := newTestApp(auther)

		req := httptest.NewRequest(fiber.MethodGet, "/profile", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer access.jwt")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, true, body["onboarded"])
	})

	t.Run("expired token", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Profile", mock.Anything, mock.Anything).
			Return(nil, auth.ErrTokenExpired)

		app := newTestApp(auther)

		req := httptest.NewRequest(fiber.MethodGet, "/profile", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer stale.jwt")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "auth_token_expired", errObj["code"])
	})
}

func TestOnboardingPost(t *testing.T) {
	claims := &auth.TokenClaims{
		Kind:  auth.TokenKindAccess,
		Roles: []string{auth.RoleUser},
		Email: "user@example.com",
	}

	// stand-in for the jwtware guard
	guard := func(c *fiber.Ctx) error {
		c.Locals("user", claims)
		return c.Next()
	}

	t.Run("success", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("CompleteOnboarding", mock.Anything, "user@example.com").
			Return(&auth.PublicProfile{Email: "user@example.com", Onboarded: true}, nil)

		app := fiber.New()
		auth.RegisterProtectedRoutes(app, guard, auth.WithControllerAuther(auther))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/onboarding", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["onboarded"])
	})

	t.Run("no claims in context", func(t *testing.T) {
		auther := new(MockAuthenticator)

		passthrough := func(c *fiber.Ctx) error { return c.Next() }

		app := fiber.New()
		auth.RegisterProtectedRoutes(app, passthrough, auth.WithControllerAuther(auther))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/onboarding", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		auther.AssertNotCalled(t, "CompleteOnboarding", mock.Anything, mock.Anything)
	})
}
