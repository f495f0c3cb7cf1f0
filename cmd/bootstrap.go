package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"giftlink/internal/config"
	"giftlink/internal/database"
	"giftlink/internal/logger"
	"giftlink/internal/repositories"
)

// loadConfig reads the .env file named by --env, then the environment.
func loadConfig(c *cli.Command) (*config.Config, *logger.Logger, error) {
	config.LoadDotEnv(c.String("env"))

	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

// stores are the repositories for the configured DB_DRIVER.
type stores struct {
	gifts repositories.GiftRepository
	users repositories.UserRepository
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.DBDriver != config.DriverMongo {
		db, err := database.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		log.Info("connected to DB", zap.String("driver", cfg.DBDriver))
		return &stores{
			gifts: repositories.NewGORMGiftRepository(db),
			users: repositories.NewGORMUserRepository(db),
			ping:  func(ctx context.Context) error { return database.PingGORM(ctx, db) },
			close: func(context.Context) error { return database.CloseGORM(db) },
		}, nil
	}

	m := database.NewMongo(cfg.MongoURL, cfg.MongoDB, log)
	if _, err := m.Connect(ctx); err != nil {
		return nil, err
	}

	gifts := repositories.NewMongoGiftRepository(m.Collection(database.GiftsCollection))
	users := repositories.NewMongoUserRepository(m.Collection(database.UsersCollection))

	idxCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := gifts.EnsureIndexes(idxCtx); err != nil {
		log.Warn("gift indexes not ensured", zap.Error(err))
	}
	if err := users.EnsureIndexes(idxCtx); err != nil {
		log.Warn("user indexes not ensured", zap.Error(err))
	}

	return &stores{
		gifts: gifts,
		users: users,
		ping:  m.Ping,
		close: m.Close,
	}, nil
}
