package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/storefront/internal/cli"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}

	// Terminal output belongs to the commands; the log only carries warnings
	// unless a level is set explicitly.
	level := zerolog.WarnLevel
	if _, ok := os.LookupEnv(config.EnvLogLevel); ok {
		level = logger.ParseLevel(cfg.App.LogLevel)
	}
	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       level,
		WarnStack:   cfg.App.LogWarnStack,
		Console:     true,
	})

	root := cli.NewRootCommand(cli.NewRuntimeFactory(cfg, logg))
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
