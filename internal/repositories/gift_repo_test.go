package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"giftlink/internal/database"
	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/search"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenGORM("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseGORM(db) })
	return db
}

func seedGifts() []models.Gift {
	return []models.Gift{
		{ID: "g1", Name: "Desk Lamp", Description: "warm light", Category: "Home", Price: 15, AgeYears: 1},
		{ID: "g2", Name: "Floor Lamp", Description: "tall", Category: "Home", Price: 30, AgeYears: 4},
		{ID: "g3", Name: "Smart Watch", Description: "fitness tracker", Category: "Electronics", Price: 50, Condition: "New"},
		{ID: "g4", Name: "Leather Strap", Description: "fits any WATCH", Category: "Accessories", Price: 10},
		{ID: "g5", Name: "100% Cotton_Tee", Description: "shirt", Category: "Clothing", Price: 8},
	}
}

func criteria(t *testing.T, raw string) search.Criteria {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	c, err := search.ParseCriteria(v)
	require.NoError(t, err)
	return c
}

func ids(gifts []models.Gift) []string {
	out := make([]string, 0, len(gifts))
	for _, g := range gifts {
		out = append(out, g.ID)
	}
	return out
}

// runGiftRepositoryContract exercises every GiftRepository method against repo.
func runGiftRepositoryContract(t *testing.T, repo repositories.GiftRepository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateMany(ctx, seedGifts()))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	t.Run("GetAll", func(t *testing.T) {
		gifts, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"g1", "g2", "g3", "g4", "g5"}, ids(gifts))
	})

	t.Run("GetByID", func(t *testing.T) {
		g, err := repo.GetByID(ctx, "g3")
		require.NoError(t, err)
		assert.Equal(t, "Smart Watch", g.Name)

		_, err = repo.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})

	t.Run("Search", func(t *testing.T) {
		tests := []struct {
			raw  string
			want []string
		}{
			{"", []string{"g1", "g2", "g3", "g4", "g5"}},
			{"q=watch", []string{"g3", "g4"}},
			{"q=LAMP", []string{"g1", "g2"}},
			{"category=Electronics", []string{"g3"}},
			{"category=electronics", []string{}},
			{"priceMin=10&priceMax=30", []string{"g1", "g2", "g4"}},
			{"q=lamp&priceMax=20", []string{"g1"}},
			{"q=%25", []string{"g5"}},
			{"q=k_l", []string{}},
			{"q=on_T", []string{"g5"}},
		}
		for _, tt := range tests {
			gifts, err := repo.Search(ctx, criteria(t, tt.raw))
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, ids(gifts), tt.raw)
		}
	})

	t.Run("Catalog", func(t *testing.T) {
		v := url.Values{"name": {"lamp"}, "age_years": {"2"}}
		q, err := search.ParseCatalogQuery(v)
		require.NoError(t, err)
		gifts, err := repo.Catalog(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"g1"}, ids(gifts))

		q, err = search.ParseCatalogQuery(url.Values{"condition": {"New"}})
		require.NoError(t, err)
		gifts, err = repo.Catalog(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"g3"}, ids(gifts))
	})

	t.Run("CreateAssignsID", func(t *testing.T) {
		g := &models.Gift{Name: "Mug", Category: "Kitchen", Price: 4}
		require.NoError(t, repo.Create(ctx, g))
		assert.NotEmpty(t, g.ID)

		stored, err := repo.GetByID(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mug", stored.Name)
	})

	t.Run("CreateDuplicateID", func(t *testing.T) {
		err := repo.Create(ctx, &models.Gift{ID: "g1", Name: "Other Lamp", Category: "Home"})
		assert.True(t, errors.Is(err, repositories.ErrDuplicate), "got %v", err)

		stored, err := repo.GetByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "Desk Lamp", stored.Name)
	})

	t.Run("Update", func(t *testing.T) {
		g, err := repo.GetByID(ctx, "g2")
		require.NoError(t, err)
		g.Price = 0
		g.Description = ""
		require.NoError(t, repo.Update(ctx, g))

		stored, err := repo.GetByID(ctx, "g2")
		require.NoError(t, err)
		assert.Equal(t, 0.0, stored.Price)
		assert.Empty(t, stored.Description)

		err = repo.Update(ctx, &models.Gift{ID: "missing", Name: "x"})
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "g5"))
		_, err := repo.GetByID(ctx, "g5")
		assert.True(t, errors.Is(err, repositories.ErrNotFound))

		err = repo.Delete(ctx, "g5")
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}

func TestMockGiftRepository(t *testing.T) {
	runGiftRepositoryContract(t, repositories.NewMockGiftRepository())
}

func TestGORMGiftRepository(t *testing.T) {
	runGiftRepositoryContract(t, repositories.NewGORMGiftRepository(newSQLiteDB(t)))
}

// TestMongoGiftRepository runs against a real server when MONGO_TEST_URL is set.
func TestMongoGiftRepository(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	db := client.Database("giftlink_test_" + uuid.NewString()[:8])
	defer db.Drop(context.Background())

	repo := repositories.NewMongoGiftRepository(db.Collection(database.GiftsCollection))
	require.NoError(t, repo.EnsureIndexes(ctx))
	runGiftRepositoryContract(t, repo)
}
