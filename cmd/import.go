package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"giftlink/internal/importer"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Seed the gifts collection from a JSON file when it is empty",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "JSON array of gifts",
				Value: "data/gifts.json",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(c.String("file"))
			if err != nil {
				return fmt.Errorf("opening seed file: %w", err)
			}
			defer f.Close()

			st, err := openStores(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.close(context.Background())

			ctx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
			defer cancel()
			res, err := importer.Import(ctx, st.gifts, f)
			if err != nil {
				return err
			}
			if res.Existing > 0 {
				log.Info("gifts already present, nothing imported", zap.Int64("existing", res.Existing))
				return nil
			}
			log.Info("gifts imported", zap.Int("inserted", res.Inserted))
			return nil
		},
	}
}
