package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"giftlink/internal/logger"
	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/search"
)

// Gift event routing keys.
const (
	EventGiftCreated = "gift.created"
	EventGiftUpdated = "gift.updated"
	EventGiftDeleted = "gift.deleted"
)

// EventPublisher delivers gift events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// GiftEvent is the payload published after every successful gift write.
type GiftEvent struct {
	Type       string       `json:"type"`
	GiftID     string       `json:"gift_id"`
	Gift       *models.Gift `json:"gift,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// GiftService handles business logic related to gifts.
type GiftService struct {
	repo      repositories.GiftRepository
	publisher EventPublisher
	timeout   time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewGiftService creates a new GiftService. publisher may be nil, in which
// case no events are published.
func NewGiftService(repo repositories.GiftRepository, publisher EventPublisher, queryTimeout time.Duration, log *logger.Logger) *GiftService {
	if log == nil {
		log = logger.NewNop()
	}
	return &GiftService{
		repo:      repo,
		publisher: publisher,
		timeout:   queryTimeout,
		log:       log.Named("gifts"),
		now:       time.Now,
	}
}

// withTimeout bounds a single repository call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// GetAllGifts retrieves all gifts.
func (s *GiftService) GetAllGifts(ctx context.Context) ([]models.Gift, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.GetAll(ctx)
}

// GetGiftByID retrieves a single gift by its ID.
func (s *GiftService) GetGiftByID(ctx context.Context, id string) (*models.Gift, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

// SearchGifts runs exactly one read-only query built from c.
func (s *GiftService) SearchGifts(ctx context.Context, c search.Criteria) ([]models.Gift, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	gifts, err := s.repo.Search(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to search gifts: %w", err)
	}
	return gifts, nil
}

// Catalog filters gifts by name, category, condition and maximum age.
func (s *GiftService) Catalog(ctx context.Context, q search.CatalogQuery) ([]models.Gift, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	gifts, err := s.repo.Catalog(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	return gifts, nil
}

// CreateGift assigns an ID and date_added, stores the gift and publishes
// gift.created.
func (s *GiftService) CreateGift(ctx context.Context, gift *models.Gift) error {
	gift.ID = uuid.New().String()
	if gift.DateAdded == 0 {
		gift.DateAdded = s.now().Unix()
	}

	repoCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Create(repoCtx, gift); err != nil {
		return fmt.Errorf("failed to create gift: %w", err)
	}

	s.publish(ctx, EventGiftCreated, gift.ID, gift)
	return nil
}

// UpdateGift replaces a stored gift. The original date_added is kept when
// the update leaves it unset.
func (s *GiftService) UpdateGift(ctx context.Context, gift *models.Gift) error {
	repoCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.repo.GetByID(repoCtx, gift.ID)
	if err != nil {
		return err
	}
	if gift.DateAdded == 0 {
		gift.DateAdded = existing.DateAdded
	}
	if err := s.repo.Update(repoCtx, gift); err != nil {
		return fmt.Errorf("failed to update gift %s: %w", gift.ID, err)
	}

	s.publish(ctx, EventGiftUpdated, gift.ID, gift)
	return nil
}

// DeleteGift deletes a gift by its ID.
func (s *GiftService) DeleteGift(ctx context.Context, id string) error {
	repoCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(repoCtx, id); err != nil {
		return fmt.Errorf("failed to delete gift %s: %w", id, err)
	}

	s.publish(ctx, EventGiftDeleted, id, nil)
	return nil
}

// publish never fails the caller; broker errors are only logged.
func (s *GiftService) publish(ctx context.Context, eventType, id string, gift *models.Gift) {
	log := s.log.WithContext(ctx)
	if s.publisher == nil {
		log.Debug("event publisher disabled, skipping", zap.String("event", eventType), zap.String("gift_id", id))
		return
	}

	event := GiftEvent{Type: eventType, GiftID: id, Gift: gift, OccurredAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Warn("failed to publish gift event",
			zap.String("event", eventType),
			zap.String("gift_id", id),
			zap.Error(err),
		)
		return
	}
	log.Debug("published gift event", zap.String("event", eventType), zap.String("gift_id", id))
}
