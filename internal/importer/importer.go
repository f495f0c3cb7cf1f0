// Package importer seeds the gifts collection from a JSON document.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"giftlink/internal/models"
	"giftlink/internal/repositories"
)

// Result reports what Import did. Existing is non-zero when the import was
// skipped because the collection already held gifts.
type Result struct {
	Inserted int
	Existing int64
}

// Import reads a JSON array of gifts from r and inserts them only when the
// repository is empty. Gifts without an id get a UUID and gifts without
// date_added get the current time.
func Import(ctx context.Context, repo repositories.GiftRepository, r io.Reader) (Result, error) {
	var gifts []models.Gift
	if err := json.NewDecoder(r).Decode(&gifts); err != nil {
		return Result{}, fmt.Errorf("failed to decode gifts: %w", err)
	}

	existing, err := repo.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count gifts: %w", err)
	}
	if existing > 0 {
		return Result{Existing: existing}, nil
	}
	if len(gifts) == 0 {
		return Result{}, nil
	}

	now := time.Now().Unix()
	for i := range gifts {
		if gifts[i].ID == "" {
			gifts[i].ID = uuid.New().String()
		}
		if gifts[i].DateAdded == 0 {
			gifts[i].DateAdded = now
		}
	}

	if err := repo.CreateMany(ctx, gifts); err != nil {
		return Result{}, fmt.Errorf("failed to insert gifts: %w", err)
	}
	return Result{Inserted: len(gifts)}, nil
}
