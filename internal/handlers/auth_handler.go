package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"giftlink/internal/middleware"
	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes. limiter guards
// register and login when non-nil; auth guards the profile update.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth, limiter fiber.Handler) {
	authRoutes := router.Group("/auth")
	if limiter != nil {
		authRoutes.Post("/register", limiter, h.HandleRegister)
		authRoutes.Post("/login", limiter, h.HandleLogin)
	} else {
		authRoutes.Post("/register", h.HandleRegister)
		authRoutes.Post("/login", h.HandleLogin)
	}
	authRoutes.Put("/update", auth, h.HandleUpdate)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Password  string `json:"password" validate:"required,min=6"`
}

// HandleRegister creates a user and answers 201 with a token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if stop, err := validate(c, h.validate, req); stop {
		return err
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	token, err := h.authService.Register(c.UserContext(), user)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"authtoken": token,
		"email":     user.Email,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if stop, err := validate(c, h.validate, req); stop {
		return err
	}

	token, user, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
				"error":   err.Error(),
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"authtoken": token,
		"userName":  user.FirstName,
		"userEmail": user.Email,
	})
}

// UpdateRequest represents the request body for a profile update.
type UpdateRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// HandleUpdate changes the caller's name and answers with a fresh token.
func (h *AuthHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if stop, err := validate(c, h.validate, req); stop {
		return err
	}

	token, err := h.authService.UpdateProfile(c.UserContext(), middleware.UserID(c), req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return err
	}
	return c.JSON(fiber.Map{"authtoken": token})
}
