// Package commands implements the temstapro CLI commands.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hemeai/temstapro-runner/pkg/client"
	"github.com/hemeai/temstapro-runner/pkg/config"
	"github.com/hemeai/temstapro-runner/pkg/logging"
	"github.com/hemeai/temstapro-runner/pkg/standalone"
	"github.com/hemeai/temstapro-runner/pkg/version"
)

var (
	// runtimeCfg is resolved once from the environment before any command
	// runs and passed along explicitly from there.
	runtimeCfg config.Runtime
	// runnerClient talks to the worker daemon.
	runnerClient *client.Client
	// workerAPIPort is the host port the worker API is expected on.
	workerAPIPort uint16
)

// NewRootCmd creates the temstapro root command.
func NewRootCmd() *cobra.Command {
	var debug bool
	var host string

	c := &cobra.Command{
		Use:           "temstapro",
		Short:         "Run TemStaPro protein thermostability predictions on a managed runner",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetDebug(debug)
			cfg, err := config.LoadRuntime()
			if err != nil {
				return err
			}
			runtimeCfg = cfg
			runnerClient = client.New(fmt.Sprintf("http://%s:%d", host, workerAPIPort))
			return nil
		},
	}

	// Accept underscore spellings of flag names (e.g. --portion_size).
	c.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	c.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	c.PersistentFlags().StringVar(&host, "worker-host", "127.0.0.1", "Host the worker API is published on")
	c.PersistentFlags().Uint16Var(&workerAPIPort, "worker-port", standalone.DefaultPort, "Port the worker API is published on")

	c.AddCommand(
		newPredictCmd(),
		newStatusCmd(),
		newInstallRunner(),
		newUninstallRunner(),
		newRestartRunner(),
	)

	return c
}
