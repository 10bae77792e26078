// Package standalone manages the lifecycle of the runner container on a
// Docker engine: image, cache volumes, and the worker container itself.
package standalone

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/hemeai/temstapro-runner/pkg/gpu"
)

const (
	// RunnerContainerName is the name of the worker container.
	RunnerContainerName = "temstapro-runner"
	// DefaultRunnerImage is the image the worker container is created from.
	DefaultRunnerImage = "hemeai/temstapro-runner:latest"
	// DefaultPort is the host port the worker API is published on.
	DefaultPort uint16 = 12520

	// workerPort is the port the worker daemon listens on inside the
	// container.
	workerPort = nat.Port("12520/tcp")

	roleLabel  = "com.hemeai.temstapro.role"
	roleWorker = "worker"
)

// DockerClient is the subset of the Docker API the runner lifecycle needs.
type DockerClient interface {
	client.ContainerAPIClient
	client.ImageAPIClient
	client.VolumeAPIClient
}

// NewDockerClient connects to the Docker engine from the environment and
// verifies the connection.
func NewDockerClient(ctx context.Context) (*client.Client, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	if _, err := dockerClient.Ping(ctx); err != nil {
		dockerClient.Close()
		return nil, fmt.Errorf("failed to ping Docker daemon: %w", err)
	}
	return dockerClient, nil
}

// RunnerOptions configures runner container installation.
type RunnerOptions struct {
	// Image overrides DefaultRunnerImage when non-empty.
	Image string
	// Port is the host port to publish the worker API on.
	Port uint16
	// GPU is the GPU class to attach to the container.
	GPU gpu.Class
	// TimeoutMinutes is forwarded to the worker as its prediction deadline.
	TimeoutMinutes int
	// PullImage forces an image pull before creating the container.
	PullImage bool
}

func (o RunnerOptions) image() string {
	if o.Image != "" {
		return o.Image
	}
	return DefaultRunnerImage
}

func (o RunnerOptions) port() uint16 {
	if o.Port != 0 {
		return o.Port
	}
	return DefaultPort
}

// FindRunnerContainer looks up the runner container. It returns the
// container ID and state, or an empty ID when no runner exists.
func FindRunnerContainer(ctx context.Context, dockerClient DockerClient) (string, string, error) {
	containers, err := dockerClient.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", roleLabel+"="+roleWorker)),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to list containers: %w", err)
	}
	for _, ctr := range containers {
		for _, name := range ctr.Names {
			if strings.TrimPrefix(name, "/") == RunnerContainerName {
				return ctr.ID, ctr.State, nil
			}
		}
	}
	return "", "", nil
}

// InstallRunner ensures the runner container exists and is running. An
// already-running runner is left in place.
func InstallRunner(ctx context.Context, dockerClient DockerClient, printer StatusPrinter, opts RunnerOptions) error {
	id, state, err := FindRunnerContainer(ctx, dockerClient)
	if err != nil {
		return err
	}
	if id != "" && state == "running" {
		printer.Println("Runner container is already running")
		return nil
	}
	if id != "" {
		// A stopped or exited runner is replaced rather than restarted so
		// that new options take effect.
		if err := dockerClient.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
			return fmt.Errorf("failed to remove stale runner container: %w", err)
		}
	}

	if opts.PullImage {
		if err := EnsureRunnerImage(ctx, dockerClient, opts.image(), printer); err != nil {
			return err
		}
	}
	if err := EnsureCacheVolumes(ctx, dockerClient, printer); err != nil {
		return err
	}

	env := []string{
		fmt.Sprintf("TIMEOUT=%d", opts.TimeoutMinutes),
	}
	if opts.GPU != gpu.ClassNone {
		env = append(env, "GPU="+string(opts.GPU))
	}

	hostPort := strconv.Itoa(int(opts.port()))
	created, err := dockerClient.ContainerCreate(
		ctx,
		&container.Config{
			Image: opts.image(),
			Env:   env,
			ExposedPorts: nat.PortSet{
				workerPort: struct{}{},
			},
			Labels: map[string]string{
				roleLabel: roleWorker,
			},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				workerPort: []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: hostPort},
				},
			},
			Mounts: []mount.Mount{
				{
					Type:   mount.TypeVolume,
					Source: ModelCacheVolume,
					Target: ModelCacheMountPath,
				},
				{
					Type:   mount.TypeVolume,
					Source: EmbeddingsCacheVolume,
					Target: EmbeddingsCacheMountPath,
				},
			},
			Resources: container.Resources{
				DeviceRequests: opts.GPU.DeviceRequests(),
			},
			RestartPolicy: container.RestartPolicy{
				Name: container.RestartPolicyUnlessStopped,
			},
		},
		nil,
		nil,
		RunnerContainerName,
	)
	if err != nil {
		return fmt.Errorf("failed to create runner container: %w", err)
	}

	if err := dockerClient.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start runner container: %w", err)
	}

	printer.Println("Started runner container", RunnerContainerName, "on port", hostPort)
	return nil
}

// UninstallRunner stops and removes the runner container. Image and volume
// removal is opt-in.
func UninstallRunner(ctx context.Context, dockerClient DockerClient, printer StatusPrinter, removeImages, removeVolumes bool) error {
	id, _, err := FindRunnerContainer(ctx, dockerClient)
	if err != nil {
		return err
	}
	if id != "" {
		if err := dockerClient.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
			return fmt.Errorf("failed to stop runner container: %w", err)
		}
		if err := dockerClient.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
			return fmt.Errorf("failed to remove runner container: %w", err)
		}
		printer.Println("Removed runner container", RunnerContainerName)
	}

	if removeImages {
		if err := PruneRunnerImages(ctx, dockerClient, DefaultRunnerImage, printer); err != nil {
			return err
		}
	}
	if removeVolumes {
		if err := RemoveCacheVolumes(ctx, dockerClient, printer); err != nil {
			return err
		}
	}
	return nil
}
