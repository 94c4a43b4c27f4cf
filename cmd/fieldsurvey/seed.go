package main

import (
	"context"
	"fmt"

	"fieldsurvey/internal/reference"
	"fieldsurvey/internal/seed"
	"fieldsurvey/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Import the reference file into the accounts table",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Reference .xlsx or .csv file (defaults to REFERENCE_PATH)",
		},
		&cli.StringFlag{
			Name:  "sheet",
			Usage: "Worksheet name, first sheet when empty",
		},
		&cli.BoolFlag{
			Name:  "prune",
			Usage: "Delete accounts missing from the file",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		path := c.String("file")
		if path == "" {
			path = cfg.ReferencePath
		}
		if path == "" {
			return fmt.Errorf("pass --file or set REFERENCE_PATH")
		}
		sheet := c.String("sheet")
		if sheet == "" {
			sheet = cfg.ReferenceSheet
		}

		ctx := context.Background()

		result, err := reference.ReadFile(path, sheet)
		if err != nil {
			return err
		}
		fmt.Printf("Read %d accounts from %s (%d rows skipped, %d duplicate ids ignored)\n", len(result.Records), path, result.Skipped, result.Duplicates)

		rt := newRuntime(cfg, newLogger(cfg))
		defer rt.Close()

		pool, err := rt.dbPool(ctx)
		if err != nil {
			return err
		}

		_, err = seed.SyncAccounts(ctx, store.NewAccountRepository(pool), result.Records, c.Bool("prune"))
		return err
	},
}
