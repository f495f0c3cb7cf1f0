package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftlink/internal/database"
	"giftlink/internal/logger"
	"giftlink/internal/models"
)

func TestOpenGORM_SQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenGORM("sqlite", dsn)
	require.NoError(t, err)
	defer database.CloseGORM(db)

	assert.True(t, db.Migrator().HasTable(&models.Gift{}))
	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.NoError(t, database.PingGORM(context.Background(), db))
}

func TestOpenGORM_UnknownDriver(t *testing.T) {
	_, err := database.OpenGORM("oracle", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestMongo_PingBeforeConnect(t *testing.T) {
	m := database.NewMongo("mongodb://localhost:27017", "giftdb", logger.NewNop())
	assert.Error(t, m.Ping(context.Background()))
	assert.NoError(t, m.Close(context.Background()))
}

func TestMongo_CollectionBeforeConnectPanics(t *testing.T) {
	m := database.NewMongo("mongodb://localhost:27017", "giftdb", logger.NewNop())
	assert.Panics(t, func() { m.Collection(database.GiftsCollection) })
}

func TestMongo_InvalidURI(t *testing.T) {
	m := database.NewMongo("not-a-mongo-uri", "giftdb", logger.NewNop())
	_, err := m.Connect(context.Background())
	assert.Error(t, err)
}
