package docker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
)

type (
	// SQLServerOptions represents options for running SQL Server in Docker
	SQLServerOptions struct {
		// Image is the SQL Server image to run (default: consts.DefaultDevImage)
		Image string

		// Password is the SA password (default: consts.DefaultDevPassword)
		Password string

		// Name is the optional container name
		Name string

		// Labels are added to the container, e.g. to find it again later
		Labels map[string]string
	}

	// SQLServerContainer manages a SQL Server container for running tests locally
	SQLServerContainer struct {
		options   SQLServerOptions
		container *mssql.MSSQLServerContainer
	}
)

// NewSQLServer creates a SQL Server container with the given options. Nothing
// is started until Start is called.
//
// Example:
//
//	container := docker.NewSQLServer(docker.SQLServerOptions{
//		Labels: map[string]string{consts.DevContainerLabel: "true"},
//	})
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
//
//	dsn, err := container.GetDSN(ctx, "master")
func NewSQLServer(opts SQLServerOptions) *SQLServerContainer {
	if opts.Image == "" {
		opts.Image = consts.DefaultDevImage
	}

	if opts.Password == "" {
		opts.Password = consts.DefaultDevPassword
	}

	return &SQLServerContainer{options: opts}
}

// Start starts the container and waits until the server accepts connections.
// The SQL Server EULA is accepted on the caller's behalf.
func (c *SQLServerContainer) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Name:   c.options.Name,
			Labels: c.options.Labels,
		},
	}

	container, err := mssql.Run(ctx,
		c.options.Image,
		mssql.WithAcceptEULA(),
		mssql.WithPassword(c.options.Password),
		testcontainers.CustomizeRequest(req),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start SQL Server container")
	}

	c.container = container
	return nil
}

// Stop stops and removes the container
func (c *SQLServerContainer) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	return errors.Wrap(err, "failed to stop SQL Server container")
}

// GetDSN returns a sqlserver:// connection string for database on the
// running container.
func (c *SQLServerContainer) GetDSN(ctx context.Context, database string) (string, error) {
	if c.container == nil {
		return "", errors.New("container is not running")
	}

	var args []string
	if database != "" {
		args = append(args, "database="+database)
	}

	dsn, err := c.container.ConnectionString(ctx, args...)
	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}

	return dsn, nil
}

// ID returns the Docker container ID, or an empty string when not running.
func (c *SQLServerContainer) ID() string {
	if c.container == nil {
		return ""
	}

	return c.container.GetContainerID()
}

// IsRunning returns true if the container is currently running
func (c *SQLServerContainer) IsRunning() bool {
	return c.container != nil
}
