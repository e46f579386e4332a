package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/pseudomuto/tsqlrunner/pkg/docker"
	"github.com/pseudomuto/tsqlrunner/pkg/mssql"
	"github.com/pseudomuto/tsqlrunner/pkg/utils"
	"github.com/urfave/cli/v3"
)

const (
	devContainerName = "tsqlrunner-dev"
	devDatabase      = "Sample"
)

func dev(dc docker.DockerClient) *cli.Command {
	engine := docker.NewEngine(dc)

	return &cli.Command{
		Name:  "dev",
		Usage: "Manage a local SQL Server development instance",
		Commands: []*cli.Command{
			devUp(engine),
			devDown(engine),
		},
	}
}

func devUp(engine *docker.Engine) *cli.Command {
	return &cli.Command{
		Name:  "up",
		Usage: "Start a SQL Server container and create the test database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "image",
				Usage: "SQL Server image to run",
				Value: consts.DefaultDevImage,
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "SA password for the container",
				Value: consts.DefaultDevPassword,
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "database to create for the tests",
				Value: devDatabase,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := writer(cmd)

			running, err := engine.List(ctx, consts.DevContainerLabel)
			if err != nil {
				return err
			}

			if len(running) > 0 {
				fmt.Fprintln(w, "SQL Server development instance is already running")
				fmt.Fprintln(w, "Use 'tsqlrunner dev down' to stop it first")
				return nil
			}

			// The container must outlive this process.
			if err := os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true"); err != nil {
				return errors.Wrap(err, "failed to disable container reaper")
			}

			container := docker.NewSQLServer(docker.SQLServerOptions{
				Image:    cmd.String("image"),
				Password: cmd.String("password"),
				Name:     devContainerName,
				Labels:   map[string]string{consts.DevContainerLabel: "true"},
			})

			fmt.Fprintf(w, "Starting %s...\n", cmd.String("image"))
			if err := container.Start(ctx); err != nil {
				return err
			}

			database := cmd.String("database")
			if err := createDatabase(ctx, w, container, database); err != nil {
				return err
			}

			dsn, err := container.GetDSN(ctx, database)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\nConnection string: %s\n", dsn)
			fmt.Fprintf(w, "export TSQLRUNNER_URL='%s'\n", dsn)
			return nil
		},
	}
}

func devDown(engine *docker.Engine) *cli.Command {
	return &cli.Command{
		Name:  "down",
		Usage: "Stop and remove the SQL Server development instance",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := writer(cmd)

			containers, err := engine.List(ctx, consts.DevContainerLabel)
			if err != nil {
				return err
			}

			if len(containers) == 0 {
				fmt.Fprintln(w, "No SQL Server development instance is currently running")
				return nil
			}

			for _, c := range containers {
				if err := engine.Stop(ctx, c.ID); err != nil {
					return err
				}

				fmt.Fprintf(w, "Stopped %s\n", strings.Join(c.Names, ", "))
			}

			return nil
		},
	}
}

func createDatabase(ctx context.Context, w io.Writer, container *docker.SQLServerContainer, database string) error {
	dsn, err := container.GetDSN(ctx, "")
	if err != nil {
		return err
	}

	client, err := mssql.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if version, err := client.ServerVersion(ctx); err == nil {
		fmt.Fprintf(w, "Connected to SQL Server %s\n", version)
	}

	return client.Exec(ctx, createDatabaseSQL(database))
}

func createDatabaseSQL(database string) string {
	return fmt.Sprintf("IF DB_ID(%s) IS NULL CREATE DATABASE %s;",
		utils.QuoteString(database), utils.QuoteIdentifier(database))
}
