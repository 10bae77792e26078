package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/standalone"
)

func newInstallRunner() *cobra.Command {
	var image string
	var noPull bool

	c := &cobra.Command{
		Use:   "install-runner",
		Short: "Install and start the TemStaPro runner container",
		RunE: func(cmd *cobra.Command, args []string) error {
			dockerClient, err := standalone.NewDockerClient(cmd.Context())
			if err != nil {
				return fmt.Errorf("unable to reach Docker engine: %w", err)
			}
			defer dockerClient.Close()
			return standalone.InstallRunner(cmd.Context(), dockerClient, asPrinter(cmd), installOptions(image, !noPull))
		},
	}

	c.Flags().StringVar(&image, "image", "", "Runner image to use instead of "+standalone.DefaultRunnerImage)
	c.Flags().BoolVar(&noPull, "no-pull", false, "Do not pull the runner image before starting")

	return c
}
