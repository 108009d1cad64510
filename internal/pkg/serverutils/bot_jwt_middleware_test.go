package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedApp(appID string) *fiber.App {
	app := fiber.New()
	app.Post("/messages", BotJwtMiddleware(appID), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func signedToken(t *testing.T, audience string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"aud": audience})
	s, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return s
}

func TestBotJwtMiddlewarePassesWithoutAppID(t *testing.T) {
	app := newGuardedApp("")

	req := httptest.NewRequest("POST", "/messages", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBotJwtMiddlewareRequiresBearer(t *testing.T) {
	app := newGuardedApp("app-123")

	req := httptest.NewRequest("POST", "/messages", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBotJwtMiddlewareChecksAudience(t *testing.T) {
	app := newGuardedApp("app-123")

	tests := []struct {
		name     string
		audience string
		want     int
	}{
		{"matching audience", "app-123", http.StatusOK},
		{"foreign audience", "someone-else", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/messages", nil)
			req.Header.Set("Authorization", "Bearer "+signedToken(t, tt.audience))

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestBotJwtMiddlewareRejectsGarbageToken(t *testing.T) {
	app := newGuardedApp("app-123")

	req := httptest.NewRequest("POST", "/messages", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
