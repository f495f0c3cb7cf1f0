package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"giftlink/internal/models"
	"giftlink/internal/search"
)

// MockGiftRepository is an in-memory implementation of GiftRepository.
// Results are returned ordered by ID so callers get a stable order.
type MockGiftRepository struct {
	gifts map[string]models.Gift
	mu    sync.RWMutex
}

// NewMockGiftRepository creates a new instance of MockGiftRepository.
func NewMockGiftRepository() *MockGiftRepository {
	return &MockGiftRepository{
		gifts: make(map[string]models.Gift),
	}
}

func (r *MockGiftRepository) filter(match func(models.Gift) bool) []models.Gift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Gift, 0, len(r.gifts))
	for _, g := range r.gifts {
		if match(g) {
			list = append(list, g)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// GetAll returns all gifts.
func (r *MockGiftRepository) GetAll(ctx context.Context) ([]models.Gift, error) {
	return r.filter(func(models.Gift) bool { return true }), nil
}

// GetByID returns a gift by its ID.
func (r *MockGiftRepository) GetByID(ctx context.Context, id string) (*models.Gift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gift, ok := r.gifts[id]
	if !ok {
		return nil, fmt.Errorf("gift with ID %s: %w", id, ErrNotFound)
	}
	return &gift, nil
}

// Search returns the gifts matching c.
func (r *MockGiftRepository) Search(ctx context.Context, c search.Criteria) ([]models.Gift, error) {
	return r.filter(c.Matches), nil
}

// Catalog returns the gifts matching q.
func (r *MockGiftRepository) Catalog(ctx context.Context, q search.CatalogQuery) ([]models.Gift, error) {
	return r.filter(q.Matches), nil
}

// Create adds a new gift, generating an ID when none is set.
func (r *MockGiftRepository) Create(ctx context.Context, gift *models.Gift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gift.ID == "" {
		gift.ID = uuid.New().String()
	}
	if _, ok := r.gifts[gift.ID]; ok {
		return fmt.Errorf("gift with ID %s: %w", gift.ID, ErrDuplicate)
	}
	r.gifts[gift.ID] = *gift
	return nil
}

// CreateMany adds several gifts.
func (r *MockGiftRepository) CreateMany(ctx context.Context, gifts []models.Gift) error {
	for i := range gifts {
		if err := r.Create(ctx, &gifts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update replaces an existing gift.
func (r *MockGiftRepository) Update(ctx context.Context, gift *models.Gift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.gifts[gift.ID]; !ok {
		return fmt.Errorf("gift with ID %s not updated: %w", gift.ID, ErrNotFound)
	}
	r.gifts[gift.ID] = *gift
	return nil
}

// Delete removes a gift by its ID.
func (r *MockGiftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.gifts[id]; !ok {
		return fmt.Errorf("gift with ID %s not deleted: %w", id, ErrNotFound)
	}
	delete(r.gifts, id)
	return nil
}

// Count returns the number of stored gifts.
func (r *MockGiftRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.gifts)), nil
}
