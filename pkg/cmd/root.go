package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Commands  []*cli.Command `group:"commands"`
		Workspace *Workspace
		Version   *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// NewRoot creates the tsqlrunner CLI application from the registered
// commands. The caller runs it with the process arguments.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//   - --debug: Log every batch and server message to stderr
//
// Example usage:
//
//	root := NewRoot(params)
//	if err := root.Run(ctx, []string{"tsqlrunner", "--dir", "db", "run"}); err != nil {
//		log.Fatal(err)
//	}
func NewRoot(p Params) *cli.Command {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Root().Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Root().Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Root().Writer, "Date:", p.Version.Timestamp)
	}

	return &cli.Command{
		Name:  "tsqlrunner",
		Usage: "A tool for deploying and running tSQLt unit tests",
		Description: `tsqlrunner prepares a SQL Server instance for tSQLt, installs the
framework, deploys your test classes and runs them over a single connection.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}

			return ctx, p.Workspace.SetDir(cmd.String("dir"))
		},
		Commands: p.Commands,
	}
}
