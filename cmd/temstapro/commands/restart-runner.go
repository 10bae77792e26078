package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/standalone"
)

func newRestartRunner() *cobra.Command {
	var image string

	c := &cobra.Command{
		Use:   "restart-runner",
		Short: "Restart the TemStaPro runner container",
		RunE: func(cmd *cobra.Command, args []string) error {
			dockerClient, err := standalone.NewDockerClient(cmd.Context())
			if err != nil {
				return fmt.Errorf("unable to reach Docker engine: %w", err)
			}
			defer dockerClient.Close()

			// Stop the runner without removing images or volumes, then
			// start it again with the current options.
			printer := asPrinter(cmd)
			if err := standalone.UninstallRunner(cmd.Context(), dockerClient, printer, false, false); err != nil {
				return err
			}
			return standalone.InstallRunner(cmd.Context(), dockerClient, printer, installOptions(image, false))
		},
	}

	c.Flags().StringVar(&image, "image", "", "Runner image to use instead of "+standalone.DefaultRunnerImage)

	return c
}
