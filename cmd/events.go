package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"giftlink/pkg/rabbitmq"
)

// EventsCommand creates the events command
func EventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Tail gift events from the RabbitMQ queue",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			zl := log.Named("events").Logger
			mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, zl)
			if err != nil {
				return err
			}
			defer mq.Close()

			return mq.Consume(ctx, rabbitmq.LogHandler(zl))
		},
	}
}
