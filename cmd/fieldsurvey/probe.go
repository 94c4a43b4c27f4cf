package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

var probeCommand = &cli.Command{
	Name:  "probe",
	Usage: "Check that the record backend is reachable",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Give up after this long",
			Value: 15 * time.Second,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		rt := newRuntime(cfg, logger)
		defer rt.Close()

		ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
		defer cancel()

		appender, err := rt.recordAppender(ctx)
		if err != nil {
			return err
		}

		if err := appender.Probe(ctx); err != nil {
			return fmt.Errorf("%s backend probe failed: %w", cfg.RecordBackend, err)
		}

		logger.WithField("backend", cfg.RecordBackend).Info("record backend reachable")
		fmt.Printf("%s backend OK\n", cfg.RecordBackend)
		return nil
	},
}
