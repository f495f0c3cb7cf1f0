package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"giftlink/internal/logger"
	"giftlink/internal/search"
)

// ErrorHandler is the terminal handler for errors returned by routes.
// Framework errors keep their status; anything else becomes a plain 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).SendString(fe.Message)
		}

		log.WithContext(c.UserContext()).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
}

// HandleRoot answers the liveness probe.
func HandleRoot(c *fiber.Ctx) error {
	return c.SendString("Inside the server")
}

// HealthHandler reports database reachability. ping may be nil.
func HealthHandler(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database, code := "ok", "up", fiber.StatusOK
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, database, code = "degraded", "down", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": database,
		})
	}
}

// queryParams exposes fiber query values to the search parsers.
type queryParams struct {
	c *fiber.Ctx
}

func (q queryParams) Get(key string) string {
	return q.c.Query(key)
}

func invalidQuery(c *fiber.Ctx, err *search.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid query parameter",
		"error":   err.Error(),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validate runs v on s and writes a 400 response when it fails. The returned
// bool reports whether the handler should stop.
func validate(c *fiber.Ctx, v *validator.Validate, s any) (bool, error) {
	err := v.Struct(s)
	if err == nil {
		return false, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return true, err
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"error":   err.Error(),
		"errors":  errorMessages,
	})
}
