package docker

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/utils"
)

// stopTimeout is the number of seconds SQL Server is given to shut down.
const stopTimeout = 30

type (
	// DockerClient defines the interface for Docker operations used by the Engine.
	// This interface is satisfied by *client.Client and allows for easy mocking in tests.
	DockerClient interface {
		ContainerList(context.Context, container.ListOptions) ([]container.Summary, error)
		ContainerStop(context.Context, string, container.StopOptions) error
		ContainerRemove(context.Context, string, container.RemoveOptions) error
	}

	// Engine finds and removes containers through the Docker API.
	Engine struct {
		client DockerClient
	}

	// Container summarizes a container known to the Docker daemon.
	Container struct {
		ID     string
		Names  []string
		Image  string
		State  string
		Status string
	}
)

// NewEngine creates a new Docker Engine instance for managing Docker operations.
// The Docker client should be initialized and connected before passing to this constructor.
//
// Example:
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	engine := docker.NewEngine(cli)
//	containers, err := engine.List(ctx, consts.DevContainerLabel)
func NewEngine(cl DockerClient) *Engine {
	return &Engine{
		client: cl,
	}
}

// List returns every container, running or not, carrying label.
func (e *Engine) List(ctx context.Context, label string) ([]*Container, error) {
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", label)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list containers with label %s", label)
	}

	res := make([]*Container, len(list))
	for i, c := range list {
		names := make([]string, len(c.Names))
		for j, name := range c.Names {
			names[j] = strings.TrimPrefix(name, "/")
		}

		res[i] = &Container{
			ID:     c.ID,
			Names:  names,
			Image:  c.Image,
			State:  c.State,
			Status: c.Status,
		}
	}

	return res, nil
}

// Stop stops and removes the container.
func (e *Engine) Stop(ctx context.Context, nameOrID string) error {
	if err := e.client.ContainerStop(ctx, nameOrID, container.StopOptions{
		Timeout: utils.Ptr(stopTimeout),
	}); err != nil {
		return errors.Wrapf(err, "failed to stop container: %s", nameOrID)
	}

	if err := e.client.ContainerRemove(ctx, nameOrID, container.RemoveOptions{
		Force: true,
	}); err != nil {
		return errors.Wrapf(err, "failed to remove container: %s", nameOrID)
	}

	return nil
}
