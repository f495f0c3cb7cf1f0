package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"giftlink/cmd"
)

func main() {
	app := &cli.Command{
		Name:  "giftlink",
		Usage: "Gift listing API backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path of a .env file loaded before reading the environment",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.ImportCommand(),
			cmd.EventsCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
