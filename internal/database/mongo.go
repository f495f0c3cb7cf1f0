package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"giftlink/internal/logger"
)

// Collection names.
const (
	GiftsCollection = "gifts"
	UsersCollection = "users"
)

const pingTimeout = 5 * time.Second

// Mongo owns the process-wide MongoDB client. The client is created on the
// first call to Connect and reused afterwards.
type Mongo struct {
	uri    string
	dbName string
	log    *logger.Logger

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo creates a connector for the given URI and database name.
func NewMongo(uri, dbName string, log *logger.Logger) *Mongo {
	return &Mongo{uri: uri, dbName: dbName, log: log.Named("mongo")}
}

// Connect creates the client if needed and returns the database handle.
// An unreachable server is logged but not fatal: the driver keeps
// reconnecting in the background and queries fail until it succeeds.
func (m *Mongo) Connect(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		m.log.Error("failed to connect to DB, serving in degraded mode", zap.Error(err))
	} else {
		m.log.Info("connected to DB", zap.String("database", m.dbName))
	}

	m.client = client
	m.db = client.Database(m.dbName)
	return m.db, nil
}

// Collection returns a handle to the named collection. Connect must have
// been called first.
func (m *Mongo) Collection(name string) *mongo.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		panic("database: Collection called before Connect")
	}
	return m.db.Collection(name)
}

// Ping reports whether the server is currently reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return fmt.Errorf("mongo client is not connected")
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client if it was created.
func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client, m.db = nil, nil
	if err != nil {
		return fmt.Errorf("failed to disconnect mongo client: %w", err)
	}
	return nil
}
