package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/standalone"
)

func newUninstallRunner() *cobra.Command {
	var removeImages bool
	var removeVolumes bool

	c := &cobra.Command{
		Use:   "uninstall-runner",
		Short: "Stop and remove the TemStaPro runner container",
		RunE: func(cmd *cobra.Command, args []string) error {
			dockerClient, err := standalone.NewDockerClient(cmd.Context())
			if err != nil {
				return fmt.Errorf("unable to reach Docker engine: %w", err)
			}
			defer dockerClient.Close()
			return standalone.UninstallRunner(cmd.Context(), dockerClient, asPrinter(cmd), removeImages, removeVolumes)
		},
	}

	c.Flags().BoolVar(&removeImages, "images", false, "Also remove the runner image")
	c.Flags().BoolVar(&removeVolumes, "volumes", false, "Also remove the model and embeddings cache volumes")

	return c
}
