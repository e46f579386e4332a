package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pseudomuto/tsqlrunner/pkg/executor"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
	"github.com/urfave/cli/v3"
)

func deploy(ws *Workspace, open harness.OpenFunc) *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Prepare the server, install tSQLt and deploy the tests without running them",
		Flags: []cli.Flag{
			urlFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the batches each script would send instead of connecting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj, err := ws.Project()
			if err != nil {
				return err
			}

			if cmd.Bool("dry-run") {
				return printPlan(writer(cmd), proj)
			}

			dsn, err := resolveDSN(cmd, proj)
			if err != nil {
				return err
			}

			return harness.Deploy(ctx, harness.Config{
				Project: proj,
				DSN:     dsn,
				Open:    open,
				Output:  output.New(output.WithConsole(writer(cmd))),
			})
		},
	}
}

// printPlan lists every script in lifecycle order along with its batches.
func printPlan(w io.Writer, proj *project.Project) error {
	trailing, err := proj.Config().TrailingPolicy()
	if err != nil {
		return err
	}

	tests, err := proj.TestScripts()
	if err != nil {
		return err
	}

	exec := executor.New(executor.Config{Trailing: trailing})
	paths := append([]string{proj.PrepareScript(), proj.FrameworkScript()}, tests...)

	for _, path := range paths {
		s, err := script.Load(proj.FS(), path)
		if err != nil {
			return err
		}

		batches := exec.Plan(s)
		fmt.Fprintf(w, "%s (%d batches)\n", path, len(batches))
		for _, b := range batches {
			fmt.Fprintf(w, "  batch %d at line %d\n", b.Index, b.Line)
		}
	}

	return nil
}
