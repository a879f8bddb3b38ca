package serverutils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthTestApp(insecureSkipVerify bool) (*fiber.App, *map[string]string) {
	captured := map[string]string{}

	app := fiber.New()
	app.Post("/chat", NewJwtMiddleware(testSecret, insecureSkipVerify), func(ctx *fiber.Ctx) error {
		for _, key := range []string{LocalsAccessToken, LocalsUserId, LocalsUserName, LocalsUserEmail, LocalsUserRole} {
			if v, ok := ctx.Locals(key).(string); ok {
				captured[key] = v
			}
		}
		return ctx.SendStatus(fiber.StatusOK)
	})

	return app, &captured
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"name":    "Dian",
		"email":   "dian@example.com",
		"role":    "TECHNICIAN",
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJwtMiddlewareAllowsAnonymousRequests(t *testing.T) {
	app, captured := newAuthTestApp(false)

	req := httptest.NewRequest("POST", "/chat", nil)
	res, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Empty(t, *captured)
}

func TestJwtMiddlewarePopulatesLocalsFromValidToken(t *testing.T) {
	app, captured := newAuthTestApp(false)

	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret))
	res, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "user-1", (*captured)[LocalsUserId])
	assert.Equal(t, "TECHNICIAN", (*captured)[LocalsUserRole])
	assert.NotEmpty(t, (*captured)[LocalsAccessToken])
}

func TestJwtMiddlewareRejectsInvalidToken(t *testing.T) {
	app, _ := newAuthTestApp(false)

	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "wrong-secret"))
	res, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJwtMiddlewareSkipVerifyAcceptsForeignSignature(t *testing.T) {
	app, captured := newAuthTestApp(true)

	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "wrong-secret"))
	res, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "user-1", (*captured)[LocalsUserId])
}
