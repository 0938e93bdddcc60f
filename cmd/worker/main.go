package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/orbital-sh/stargazer/internal/progress"
	"github.com/orbital-sh/stargazer/internal/setup"
	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/orbital-sh/stargazer/internal/worker/pipeline"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "stargazer",
		Usage: "Run the stargazer intelligence pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to stargazer.toml (searched in default paths if unset)",
			},
			&cli.StringSliceFlag{
				Name:    "repos",
				Aliases: []string{"r"},
				Usage:   "Override the configured repository list (owner/name slugs)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runPipeline(ctx, c.String("config"), c.StringSlice("repos"))
		},
	}

	return app.Run(context.Background(), os.Args)
}

func runPipeline(ctx context.Context, configPath string, repoOverride []string) error {
	app, err := setup.InitializeApp(configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			return fmt.Errorf("%w\n\nSet a GitHub API token first:\n  export %s=ghp_...", err, config.TokenEnvVar)
		}

		return err
	}
	defer app.Cleanup()

	if len(repoOverride) > 0 {
		app.Config.Repos = repoOverride
	}

	bar := progress.NewBar(100, 25, "Stargazer intelligence")

	renderer := progress.NewRenderer(bar, os.Stdout)
	go renderer.Render()

	worker := pipeline.New(app, bar)
	err = worker.Run(ctx)
	renderer.Stop()

	return err
}
