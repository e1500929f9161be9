package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gigline/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	admin := testIdentity{id: "1", role: auth.RoleAdmin}
	member := testIdentity{id: "2", role: auth.RoleUser}

	tests := []struct {
		name         string
		identity     auth.Identity
		sessionValid bool
		required     []auth.UserRole
		expected     error
	}{
		{"nil identity", nil, true, nil, auth.ErrUnauthorized},
		{"invalid session", member, false, nil, auth.ErrNotAuthenticated},
		{"empty role set admits any principal", member, true, nil, nil},
		{"member of required set", admin, true, []auth.UserRole{auth.RoleAdmin}, nil},
		{"outside required set", member, true, []auth.UserRole{auth.RoleAdmin}, auth.ErrNotEnoughPermissions},
		{"one of several roles", member, true, []auth.UserRole{auth.RoleAdmin, auth.RoleUser}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authorize(tt.identity, tt.sessionValid, tt.required...)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.expected, err)
			}
		})
	}
}

func gateApp(t *testing.T, auther auth.Authenticator) *fiber.App {
	t.Helper()

	gate := auth.NewGate(auther, newTestConfig())
	app := fiber.New()

	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/protected", gate.Authorized(), func(c *fiber.Ctx) error {
		identity, ok := auth.GetFiberIdentity(c, "user")
		require.True(t, ok)
		return c.JSON(fiber.Map{"userId": identity.ID()})
	})
	app.Get("/admin", gate.Authorized(), gate.Permissed(auth.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("admin ok")
	})
	app.Get("/session", gate.Authenticated(), func(c *fiber.Ctx) error {
		return c.SendString("session ok")
	})

	return app
}

func TestGateAuthorized(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Authenticate", mock.Anything, "Bearer good-token").
		Return(testIdentity{id: "42", role: auth.RoleUser}, nil)
	auther.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, auth.ErrUnauthorized)

	app := gateApp(t, auther)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bad token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGatePermissed(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Authenticate", mock.Anything, "Bearer admin-token").
		Return(testIdentity{id: "1", role: auth.RoleAdmin}, nil)
	auther.On("Authenticate", mock.Anything, "Bearer member-token").
		Return(testIdentity{id: "2", role: auth.RoleUser}, nil)

	app := gateApp(t, auther)

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("member forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer member-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestGateAuthenticatedCookie(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Authenticate", mock.Anything, "Bearer cookie-token").
		Return(testIdentity{id: "7", role: auth.RoleUser}, nil)
	auther.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, auth.ErrUnauthorized)

	app := gateApp(t, auther)

	t.Run("valid cookie passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/session", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: "cookie-token"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing cookie rejected as no session", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/session", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
