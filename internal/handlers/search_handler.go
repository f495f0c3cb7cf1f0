package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"giftlink/internal/search"
	"giftlink/internal/services"
)

// SearchHandler serves the catalog search.
type SearchHandler struct {
	service *services.GiftService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *services.GiftService) *SearchHandler {
	return &SearchHandler{service: service}
}

// RegisterRoutes registers GET /search on router.
func (h *SearchHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
}

// HandleSearch filters gifts by name, category, condition and age_years.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	q, err := search.ParseCatalogQuery(queryParams{c})
	if err != nil {
		var ve *search.ValidationError
		if errors.As(err, &ve) {
			return invalidQuery(c, ve)
		}
		return err
	}

	gifts, err := h.service.Catalog(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(gifts)
}
