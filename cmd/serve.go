package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"giftlink/internal/config"
	"giftlink/internal/logger"
	"giftlink/internal/middleware"
	"giftlink/internal/server"
	"giftlink/internal/services"
	"giftlink/pkg/rabbitmq"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warnInsecureDefaults(cfg, log)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log.Named("rabbitmq").Logger)
		if err != nil {
			log.Warn("gift events disabled", zap.Error(err))
		} else {
			defer mq.Close()
			publisher = mq
		}
	}

	var limiter fiber.Handler
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = middleware.RateLimiter(rdb, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMax,
			Window:      cfg.RateLimitWindow,
			Strategy:    middleware.StrategyEndpoint,
		}, log)
	}

	app := server.New(server.Deps{
		Log:         log,
		Gifts:       services.NewGiftService(st.gifts, publisher, cfg.QueryTimeout, log),
		Auth:        services.NewAuthService(st.users, cfg.JWTSecret, cfg.QueryTimeout, log),
		RateLimiter: limiter,
		Ping:        st.ping,
	})

	return server.Run(ctx, app, cfg.AppPort, log)
}

func warnInsecureDefaults(cfg *config.Config, log *logger.Logger) {
	if cfg.UsesDefaultJWTSecret() {
		log.Warn("JWT_SECRET is not set, tokens are signed with the built-in default secret")
	}
}
