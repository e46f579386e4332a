package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/tsqlrunner/pkg/config"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/urfave/cli/v3"
)

func initCmd(ws *Workspace) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new tsqlrunner project",
		Description: `Creates tsqlrunner.yaml, a tests folder with an example test class and
the folder the tSQLt distribution is extracted into. Existing files are
left untouched, so running init twice is safe.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment variable holding the connection string",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "what to do when the connection variable is unset (required or fallback)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj := project.New(project.ProjectParams{Dir: ws.Dir()})
			if err := proj.Initialize(project.InitOptions{
				ConnectionEnv: cmd.String("env"),
				Policy:        config.ConnectionPolicy(cmd.String("policy")),
			}); err != nil {
				return err
			}

			cfg := proj.Config()
			fmt.Fprintf(writer(cmd), "Initialized tsqlrunner project in %s\n", proj.Root())
			fmt.Fprintf(writer(cmd), "Extract the tSQLt distribution into %s before running tests\n", cfg.Framework.Dir)
			return nil
		},
	}
}
