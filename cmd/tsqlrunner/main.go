package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pseudomuto/tsqlrunner/pkg/cmd"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root *cli.Command
	app := fx.New(
		fx.NopLogger,
		fx.Supply(&cmd.Version{
			Version:   version,
			Commit:    commit,
			Timestamp: date,
		}),
		cmd.Module,
		fx.Populate(&root),
	)

	if err := app.Err(); err != nil {
		slog.Error("Failed to build application", "err", err)
		os.Exit(1)
	}

	if err := root.Run(ctx, os.Args); err != nil {
		slog.Error("Error running command", "err", err)
		stop()
		os.Exit(1)
	}
}
