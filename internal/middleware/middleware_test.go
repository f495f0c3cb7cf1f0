package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/services"
)

func newAuthService(t *testing.T) (*services.AuthService, string) {
	t.Helper()
	svc := services.NewAuthService(repositories.NewMockUserRepository(), "middleware_secret", time.Second, nil)
	token, err := svc.Register(t.Context(), &models.User{Email: "mw@example.com", Password: "password123"})
	require.NoError(t, err)
	return svc, token
}

func protectedApp(svc *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthRequired(svc, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c), "email": c.Locals(LocalEmail)})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	svc, token := newAuthService(t)
	app := protectedApp(svc)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), `"email":"mw@example.com"`)
			}
		})
	}
}

func TestBuildRateLimitKey(t *testing.T) {
	app := fiber.New()
	app.Get("/api/auth/login", func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, c.Query("uid"))
		return c.SendString(buildRateLimitKey(c, "rl", c.Query("strategy")))
	})

	tests := []struct {
		query string
		want  string
	}{
		{"strategy=ip", "rl:ip:0.0.0.0"},
		{"strategy=unknown", "rl:ip:0.0.0.0"},
		{"strategy=endpoint", "rl:endpoint:/api/auth/login:0.0.0.0"},
		{"strategy=user&uid=u1", "rl:user:u1"},
		{"strategy=user", "rl:ip:0.0.0.0"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/login?"+tt.query, nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tt.want, string(body), tt.query)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	const now = int64(1_700_000_000_000)
	tests := []struct {
		name    string
		resetAt int64
		want    int
	}{
		{"whole seconds", now + 60_000, 60},
		{"partial second rounds up", now + 1_001, 2},
		{"just under a second", now + 1, 1},
		{"exactly one second", now + 1_000, 1},
		{"already reset", now, 1},
		{"reset in the past", now - 5_000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAfterSeconds(tt.resetAt, now))
		})
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	app := fiber.New()
	app.Post("/login", RateLimiter(client, RateLimiterConfig{MaxRequests: 1, Window: time.Minute}, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	}
}
