// Package server assembles the fiber application and runs it until its
// context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"giftlink/internal/handlers"
	"giftlink/internal/logger"
	"giftlink/internal/middleware"
	"giftlink/internal/services"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop
// signal.
const ShutdownTimeout = 10 * time.Second

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Log   *logger.Logger
	Gifts *services.GiftService
	Auth  *services.AuthService

	// Optional.
	RateLimiter fiber.Handler
	Ping        func(ctx context.Context) error
}

// New builds the application. Middleware runs as request logger, panic
// recovery, then CORS. Routes are matched in registration order.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "giftlink",
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		DisableStartupMessage: true,
	})

	app.Use(logger.Middleware(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/", handlers.HandleRoot)
	app.Get("/health", handlers.HealthHandler(d.Ping))

	api := app.Group("/api")
	auth := middleware.AuthRequired(d.Auth, d.Log)

	handlers.NewGiftHandler(d.Gifts).RegisterRoutes(api, auth)
	handlers.NewAuthHandler(d.Auth).RegisterRoutes(api, auth, d.RateLimiter)
	handlers.NewSearchHandler(d.Gifts).RegisterRoutes(api)

	return app
}

// Run serves app on addr and shuts it down gracefully once ctx is done.
func Run(ctx context.Context, app *fiber.App, addr string, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(ShutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
