package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"giftlink/internal/models"
	"giftlink/internal/search"
)

// MongoGiftRepository is a MongoDB implementation of GiftRepository.
// Gifts are addressed by their "id" field, not by the Mongo "_id".
type MongoGiftRepository struct {
	coll *mongo.Collection
}

// NewMongoGiftRepository creates a repository over the given collection.
func NewMongoGiftRepository(coll *mongo.Collection) *MongoGiftRepository {
	return &MongoGiftRepository{coll: coll}
}

// EnsureIndexes creates the indexes the queries rely on.
func (r *MongoGiftRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create gift indexes: %w", err)
	}
	return nil
}

func (r *MongoGiftRepository) find(ctx context.Context, filter bson.D) ([]models.Gift, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	gifts := []models.Gift{}
	if err := cur.All(ctx, &gifts); err != nil {
		return nil, err
	}
	return gifts, nil
}

// GetAll retrieves all gifts.
func (r *MongoGiftRepository) GetAll(ctx context.Context) ([]models.Gift, error) {
	gifts, err := r.find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all gifts: %w", err)
	}
	return gifts, nil
}

// GetByID retrieves a single gift by its ID.
func (r *MongoGiftRepository) GetByID(ctx context.Context, id string) (*models.Gift, error) {
	var gift models.Gift
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&gift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("gift with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get gift by ID %s: %w", id, err)
	}
	return &gift, nil
}

// Search runs a single find with the filter built from c.
func (r *MongoGiftRepository) Search(ctx context.Context, c search.Criteria) ([]models.Gift, error) {
	gifts, err := r.find(ctx, c.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to search gifts: %w", err)
	}
	return gifts, nil
}

// Catalog runs a single find with the filter built from q.
func (r *MongoGiftRepository) Catalog(ctx context.Context, q search.CatalogQuery) ([]models.Gift, error) {
	gifts, err := r.find(ctx, q.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to browse gifts: %w", err)
	}
	return gifts, nil
}

// Create inserts a new gift, generating an ID when none is set.
func (r *MongoGiftRepository) Create(ctx context.Context, gift *models.Gift) error {
	if gift.ID == "" {
		gift.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, gift); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("gift with ID %s: %w", gift.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create gift: %w", err)
	}
	return nil
}

// CreateMany inserts several gifts in one round trip.
func (r *MongoGiftRepository) CreateMany(ctx context.Context, gifts []models.Gift) error {
	if len(gifts) == 0 {
		return nil
	}
	docs := make([]interface{}, len(gifts))
	for i := range gifts {
		if gifts[i].ID == "" {
			gifts[i].ID = uuid.New().String()
		}
		docs[i] = gifts[i]
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create gifts: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create gifts: %w", err)
	}
	return nil
}

// Update replaces an existing gift document.
func (r *MongoGiftRepository) Update(ctx context.Context, gift *models.Gift) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "id", Value: gift.ID}}, gift)
	if err != nil {
		return fmt.Errorf("failed to update gift: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("gift with ID %s not updated: %w", gift.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a gift by its ID.
func (r *MongoGiftRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete gift: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("gift with ID %s not deleted: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of gift documents.
func (r *MongoGiftRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count gifts: %w", err)
	}
	return n, nil
}
