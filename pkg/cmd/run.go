package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/report"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
	"github.com/urfave/cli/v3"
)

var errTestsFailed = errors.New("one or more tests failed")

func run(ws *Workspace, open harness.OpenFunc) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Prepare the server, install tSQLt, deploy the tests and run them",
		Description: `Runs every lifecycle step over one connection and prints a table of the
results. The exit status is non-zero when a step fails or any test fails.`,
		Flags: []cli.Flag{
			urlFlag(),
			&cli.StringFlag{
				Name:    "class",
				Aliases: []string{"c"},
				Usage:   "run only the given test class",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "drop-trailing",
				Usage: "ignore script content after the last GO",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := ws.Project()
			if err != nil {
				return err
			}

			cfg := proj.Config()
			if cmd.Bool("drop-trailing") {
				cfg.Script.Trailing = script.DropTrailing.String()
			}

			if class := cmd.String("class"); class != "" {
				cat, err := buildCatalog(ws)
				if err != nil {
					return err
				}

				known := cat.Class(class)
				if known == nil {
					return errors.Errorf("unknown test class: %s", class)
				}

				cfg.Tests.Class = known.Name
			}

			dsn, err := resolveDSN(cmd, proj)
			if err != nil {
				return err
			}

			w := writer(cmd)
			results, err := harness.Run(ctx, harness.Config{
				Project: proj,
				DSN:     dsn,
				Open:    open,
				Output:  output.New(output.WithConsole(w)),
			})

			if len(results) > 0 {
				if werr := report.WriteResults(w, results); werr != nil && err == nil {
					err = werr
				}
			}

			if err != nil {
				return err
			}

			if !report.Summarize(results).OK() {
				return errTestsFailed
			}

			return nil
		},
	}
}
