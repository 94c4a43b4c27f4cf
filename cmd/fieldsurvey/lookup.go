package main

import (
	"context"
	"fmt"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "Resolve an account identifier against the reference table",
	ArgsUsage: "<account id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one account id")
		}

		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		rt := newRuntime(cfg, newLogger(cfg))
		defer rt.Close()

		accounts, err := rt.referenceStore(context.Background())
		if err != nil {
			return err
		}

		record, err := accounts.Lookup(c.Args().First())
		if err != nil {
			return err
		}

		pp.Println(record)
		return nil
	},
}
