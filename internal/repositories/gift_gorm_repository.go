package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"giftlink/internal/models"
	"giftlink/internal/search"
)

// GORMGiftRepository is a GORM implementation of GiftRepository.
type GORMGiftRepository struct {
	db *gorm.DB
}

// NewGORMGiftRepository creates a new instance of GORMGiftRepository.
func NewGORMGiftRepository(db *gorm.DB) *GORMGiftRepository {
	return &GORMGiftRepository{
		db: db,
	}
}

// GetAll retrieves all gifts from the database.
func (r *GORMGiftRepository) GetAll(ctx context.Context) ([]models.Gift, error) {
	gifts := []models.Gift{}
	if err := r.db.WithContext(ctx).Order("id").Find(&gifts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all gifts: %w", err)
	}
	return gifts, nil
}

// GetByID retrieves a single gift by its ID from the database.
func (r *GORMGiftRepository) GetByID(ctx context.Context, id string) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.WithContext(ctx).First(&gift, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gift with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get gift by ID %s: %w", id, err)
	}
	return &gift, nil
}

// Search retrieves the gifts matching c.
func (r *GORMGiftRepository) Search(ctx context.Context, c search.Criteria) ([]models.Gift, error) {
	gifts := []models.Gift{}
	if err := r.db.WithContext(ctx).Scopes(c.Scope()).Order("id").Find(&gifts).Error; err != nil {
		return nil, fmt.Errorf("failed to search gifts: %w", err)
	}
	return gifts, nil
}

// Catalog retrieves the gifts matching q.
func (r *GORMGiftRepository) Catalog(ctx context.Context, q search.CatalogQuery) ([]models.Gift, error) {
	gifts := []models.Gift{}
	if err := r.db.WithContext(ctx).Scopes(q.Scope()).Order("id").Find(&gifts).Error; err != nil {
		return nil, fmt.Errorf("failed to browse gifts: %w", err)
	}
	return gifts, nil
}

// Create creates a new gift in the database.
func (r *GORMGiftRepository) Create(ctx context.Context, gift *models.Gift) error {
	if gift.ID == "" {
		gift.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(gift).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("gift with ID %s: %w", gift.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create gift: %w", err)
	}
	return nil
}

// CreateMany inserts several gifts in one statement.
func (r *GORMGiftRepository) CreateMany(ctx context.Context, gifts []models.Gift) error {
	if len(gifts) == 0 {
		return nil
	}
	for i := range gifts {
		if gifts[i].ID == "" {
			gifts[i].ID = uuid.New().String()
		}
	}
	if err := r.db.WithContext(ctx).Create(&gifts).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create gifts: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create gifts: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing gift.
func (r *GORMGiftRepository) Update(ctx context.Context, gift *models.Gift) error {
	res := r.db.WithContext(ctx).Model(&models.Gift{}).Where("id = ?", gift.ID).Select("*").Updates(gift)
	if res.Error != nil {
		return fmt.Errorf("failed to update gift: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gift with ID %s not updated: %w", gift.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a gift by its ID from the database.
func (r *GORMGiftRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Gift{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete gift: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gift with ID %s not deleted: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of gifts.
func (r *GORMGiftRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Gift{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count gifts: %w", err)
	}
	return n, nil
}
