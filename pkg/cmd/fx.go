package cmd

import (
	"github.com/docker/docker/client"
	"github.com/pseudomuto/tsqlrunner/pkg/docker"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		NewWorkspace,
		NewRoot,
		fx.Annotate(newDockerClient, fx.As(new(docker.DockerClient))),
		func() harness.OpenFunc { return harness.OpenSQLServer },
	),
	fx.Provide(
		fx.Annotate(deploy, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(dev, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(list, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(run, fx.ResultTags(`group:"commands"`)),
	),
)

func newDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}
