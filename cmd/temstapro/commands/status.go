package commands

import (
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/standalone"
)

func newStatusCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "status",
		Short: "Show runner container and worker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
	return c
}

func runStatus(cmd *cobra.Command) error {
	if dockerClient, err := standalone.NewDockerClient(cmd.Context()); err != nil {
		cmd.Println("Docker engine: unreachable")
	} else {
		defer dockerClient.Close()
		id, state, err := standalone.FindRunnerContainer(cmd.Context(), dockerClient)
		switch {
		case err != nil:
			return err
		case id == "":
			cmd.Println("Runner container: not installed")
		default:
			cmd.Println("Runner container:", state)
		}
	}

	status := runnerClient.Status()
	if !status.Running {
		cmd.Println("Worker: not running")
		if status.Error != nil {
			cmd.Println("Worker error:", status.Error)
		}
		return nil
	}

	cmd.Println("Worker: running")
	if info := status.Info; info != nil {
		cmd.Println("  Version:", info.Version)
		cmd.Println("  GPU class:", info.GPUClass)
		cmd.Printf("  Timeout: %d minutes\n", info.TimeoutMinutes)
		cmd.Println("  Model cache:", units.HumanSize(float64(info.ModelCacheBytes)))
		cmd.Println("  Embeddings cache:", units.HumanSize(float64(info.EmbeddingsCacheBytes)))
		if len(info.HostGPUs) > 0 {
			cmd.Println("  GPUs:", strings.Join(info.HostGPUs, ", "))
		}
	}
	return nil
}
