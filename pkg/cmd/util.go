package cmd

import (
	"io"
	"os"

	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/urfave/cli/v3"
)

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "SQL Server connection string (overrides the configured environment variable)",
		Sources: cli.EnvVars("TSQLRUNNER_URL"),
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

// resolveDSN prefers --url and falls back to the project's connection settings.
func resolveDSN(cmd *cli.Command, proj *project.Project) (string, error) {
	if url := cmd.String("url"); url != "" {
		return url, nil
	}

	return proj.Config().Connection.Resolve(os.Getenv)
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}
