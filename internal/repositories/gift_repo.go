package repositories

import (
	"context"
	"errors"

	"giftlink/internal/models"
	"giftlink/internal/search"
)

// ErrNotFound is wrapped by every repository when a lookup, update or
// delete matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is wrapped by Create and CreateMany when a unique key
// already holds the value being inserted.
var ErrDuplicate = errors.New("duplicate record")

// GiftRepository defines the interface for gift data access.
type GiftRepository interface {
	GetAll(ctx context.Context) ([]models.Gift, error)
	GetByID(ctx context.Context, id string) (*models.Gift, error)
	Search(ctx context.Context, c search.Criteria) ([]models.Gift, error)
	Catalog(ctx context.Context, q search.CatalogQuery) ([]models.Gift, error)
	Create(ctx context.Context, gift *models.Gift) error
	CreateMany(ctx context.Context, gifts []models.Gift) error
	Update(ctx context.Context, gift *models.Gift) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
