package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/striter/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	unitsFlag := &cli.BoolFlag{
		Name:  "units",
		Usage: "read TEXT as comma separated hex UTF-16 code units (d83d,de00)",
	}

	app := &cli.Command{
		Name:    "striter",
		Usage:   "Iterate UTF-16 strings by code point, the way String.prototype[Symbol.iterator] does",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("STRITER_LOG_LEVEL"),
				Value:       "info",
				Destination: &ctrl.Flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to striter.json (searched upward from the working directory by default)",
				Destination: &ctrl.Flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)

			return log.Logger.WithContext(ctx), nil
		},
		Commands: []*cli.Command{
			{
				Name:      "iterate",
				Usage:     "Print each value a string iterator yields",
				ArgsUsage: "TEXT",
				Flags: []cli.Flag{
					unitsFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print {value, done} chunks as JSON lines",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Iterate(ctx, commands.IterateOptions{
						Input: c.Args().First(),
						Units: c.Bool("units"),
						JSON:  c.Bool("json"),
					})
				},
			},
			{
				Name:      "decode",
				Usage:     "Print the code points of a string with their names",
				ArgsUsage: "TEXT",
				Flags:     []cli.Flag{unitsFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Decode(ctx, commands.DecodeOptions{
						Input: c.Args().First(),
						Units: c.Bool("units"),
					})
				},
			},
			{
				Name:      "inspect",
				Usage:     "Print the prototype chain of a string iterator",
				ArgsUsage: "[TEXT]",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Inspect(ctx, c.Args().First())
				},
			},
			{
				Name:      "run",
				Usage:     "Run a WASI module with the okra.strings host API",
				ArgsUsage: "MODULE.wasm [ARGS...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "run again whenever MODULE.wasm changes",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() == 0 {
						return fmt.Errorf("missing MODULE.wasm argument")
					}
					return ctrl.Run(ctx, commands.RunOptions{
						Path:  c.Args().First(),
						Args:  c.Args().Tail(),
						Watch: c.Bool("watch"),
					})
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run striter")
	}
}
