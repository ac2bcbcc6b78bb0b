package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/shanejorr-team/personal-blog/internal/config"
	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	closer, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Command failed")
		stop()
		closer.Close()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) *cli.App {
	dryRun := &cli.BoolFlag{Name: "dry-run", Usage: "validate and report without writing"}

	return &cli.App{
		Name:  "portfolio",
		Usage: "manage photo metadata and build the portfolio pages",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or upgrade the photo schema",
				Action: run(cfg, "migrate", migrateCommand),
			},
			{
				Name:   "add",
				Usage:  "add one photo; missing required fields are prompted for",
				Flags:  addFlags(),
				Action: run(cfg, "add", addCommand),
			},
			{
				Name:      "import",
				Usage:     "add every row of a CSV file, all or nothing",
				ArgsUsage: "<file.csv>",
				Flags:     []cli.Flag{dryRun},
				Action:    run(cfg, "import", importCommand),
			},
			{
				Name:      "update",
				Usage:     "apply partial updates from a CSV keyed by id or filename",
				ArgsUsage: "<file.csv>",
				Flags:     []cli.Flag{dryRun},
				Action:    run(cfg, "update", updateCommand),
			},
			{
				Name:  "export",
				Usage: "write every photo as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: run(cfg, "export", exportCommand),
			},
			{
				Name:   "countries",
				Usage:  "list countries that have photos",
				Action: run(cfg, "countries", countriesCommand),
			},
			{
				Name:  "build",
				Usage: "assemble page data as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "build/data", Usage: "output directory"},
				},
				Action: run(cfg, "build", buildCommand),
			},
		},

		// main owns the exit so deferred closers run
		ExitErrHandler: func(*cli.Context, error) {},
	}
}
