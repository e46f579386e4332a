package cmd

import (
	"context"

	"github.com/pseudomuto/tsqlrunner/pkg/catalog"
	"github.com/pseudomuto/tsqlrunner/pkg/report"
	"github.com/urfave/cli/v3"
)

func list(ws *Workspace) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the test classes and tests defined in the project",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cat, err := buildCatalog(ws)
			if err != nil {
				return err
			}

			return report.WriteCatalog(writer(cmd), cat)
		},
	}
}

func buildCatalog(ws *Workspace) (*catalog.Catalog, error) {
	proj, err := ws.Project()
	if err != nil {
		return nil, err
	}

	paths, err := proj.TestScripts()
	if err != nil {
		return nil, err
	}

	return catalog.Build(proj.FS(), paths)
}
