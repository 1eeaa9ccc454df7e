package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	manager := NewJWTManager(testConfig())
	valid, err := manager.GenerateToken("alice")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		query          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authorization token is required",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic " + valid,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authorization token is required",
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid or expired token",
		},
		{
			name:           "valid bearer header",
			authHeader:     "Bearer " + valid,
			expectedStatus: http.StatusOK,
			expectedBody:   "alice",
		},
		{
			name:           "valid query token",
			query:          "?token=" + valid,
			expectedStatus: http.StatusOK,
			expectedBody:   "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(Middleware(manager))
			app.Get("/protected", func(c *fiber.Ctx) error {
				claims := c.Locals(ClaimsKey).(*Claims)
				return c.SendString(claims.Username)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.expectedBody)
		})
	}
}
