package testutil

import (
	"context"
	"os/exec"
	"testing"

	"github.com/docker/docker/api/types/container"
)

// SkipIfNoDocker skips the test if Docker is not available
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Docker test in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	cmd := exec.CommandContext(t.Context(), "docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// MockDockerClient implements docker.DockerClient with overridable functions
type MockDockerClient struct {
	ContainerListFunc   func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStopFunc   func(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemoveFunc func(ctx context.Context, containerID string, options container.RemoveOptions) error

	Stopped []string
	Removed []string
}

// NewMockDockerClient creates a mock client that knows of the given containers
func NewMockDockerClient(containers ...container.Summary) *MockDockerClient {
	return &MockDockerClient{
		ContainerListFunc: func(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
			return containers, nil
		},
	}
}

// ContainerList implements docker.DockerClient interface
func (m *MockDockerClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	if m.ContainerListFunc != nil {
		return m.ContainerListFunc(ctx, options)
	}
	return []container.Summary{}, nil
}

// ContainerStop implements docker.DockerClient interface
func (m *MockDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	m.Stopped = append(m.Stopped, containerID)
	if m.ContainerStopFunc != nil {
		return m.ContainerStopFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerRemove implements docker.DockerClient interface
func (m *MockDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	m.Removed = append(m.Removed, containerID)
	if m.ContainerRemoveFunc != nil {
		return m.ContainerRemoveFunc(ctx, containerID, options)
	}
	return nil
}
