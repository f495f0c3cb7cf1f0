package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/search"
	"giftlink/internal/services"
)

// GiftHandler handles HTTP requests for gifts.
type GiftHandler struct {
	service  *services.GiftService
	validate *validator.Validate
}

// NewGiftHandler creates a new GiftHandler.
func NewGiftHandler(service *services.GiftService) *GiftHandler {
	return &GiftHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the gift routes. The search route is registered
// first so it is never captured by /:id. Writes go through auth.
func (h *GiftHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	giftRoutes := router.Group("/gifts")
	giftRoutes.Get("/search", h.HandleSearchGifts)
	giftRoutes.Get("/", h.HandleGetGifts)
	giftRoutes.Get("/:id", h.HandleGetGiftByID)
	giftRoutes.Post("/", auth, h.HandleCreateGift)
	giftRoutes.Put("/:id", auth, h.HandleUpdateGift)
	giftRoutes.Delete("/:id", auth, h.HandleDeleteGift)
}

func giftNotFound(c *fiber.Ctx, id string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("Gift with ID %s not found", id),
	})
}

// HandleGetGifts returns every gift.
func (h *GiftHandler) HandleGetGifts(c *fiber.Ctx) error {
	gifts, err := h.service.GetAllGifts(c.UserContext())
	if err != nil {
		return fmt.Errorf("failed to list gifts: %w", err)
	}
	return c.JSON(gifts)
}

// HandleGetGiftByID returns a single gift or 404.
func (h *GiftHandler) HandleGetGiftByID(c *fiber.Ctx) error {
	id := c.Params("id")
	gift, err := h.service.GetGiftByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return giftNotFound(c, id)
		}
		return err
	}
	return c.JSON(gift)
}

// HandleSearchGifts filters gifts by q, category, priceMin and priceMax.
func (h *GiftHandler) HandleSearchGifts(c *fiber.Ctx) error {
	criteria, err := search.ParseCriteria(queryParams{c})
	if err != nil {
		var ve *search.ValidationError
		if errors.As(err, &ve) {
			return invalidQuery(c, ve)
		}
		return err
	}

	gifts, err := h.service.SearchGifts(c.UserContext(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(gifts)
}

// HandleCreateGift stores a new gift and answers 201 with it.
func (h *GiftHandler) HandleCreateGift(c *fiber.Ctx) error {
	var gift models.Gift
	if err := c.BodyParser(&gift); err != nil {
		return invalidBody(c, err)
	}
	if stop, err := validate(c, h.validate, gift); stop {
		return err
	}

	if err := h.service.CreateGift(c.UserContext(), &gift); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(gift)
}

// HandleUpdateGift replaces the gift named by :id.
func (h *GiftHandler) HandleUpdateGift(c *fiber.Ctx) error {
	id := c.Params("id")
	var gift models.Gift
	if err := c.BodyParser(&gift); err != nil {
		return invalidBody(c, err)
	}
	gift.ID = id
	if stop, err := validate(c, h.validate, gift); stop {
		return err
	}

	if err := h.service.UpdateGift(c.UserContext(), &gift); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return giftNotFound(c, id)
		}
		return err
	}
	return c.JSON(gift)
}

// HandleDeleteGift removes the gift named by :id and answers 204.
func (h *GiftHandler) HandleDeleteGift(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteGift(c.UserContext(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return giftNotFound(c, id)
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
