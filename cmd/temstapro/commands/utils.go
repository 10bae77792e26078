package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/moby/term"
	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/client"
	"github.com/hemeai/temstapro-runner/pkg/standalone"
)

const installHint = "Install the runner with: temstapro install-runner"

var notRunningErr = errors.New("the TemStaPro runner is not running")

// readyWaitTimeout bounds how long ensureRunnerAvailable waits for the
// worker to answer after the container starts.
const readyWaitTimeout = 60 * time.Second

func handleClientError(err error, message string) error {
	if errors.Is(err, client.ErrServiceUnavailable) {
		return fmt.Errorf("%w\n%s", notRunningErr, color.YellowString(installHint))
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ensureRunnerAvailable makes sure a worker is answering before a prediction
// is attempted. When the worker is down and a Docker engine is reachable,
// the runner container is installed on the fly.
func ensureRunnerAvailable(cmd *cobra.Command, printer standalone.StatusPrinter) error {
	if runnerClient.Status().Running {
		return nil
	}

	ctx := cmd.Context()
	dockerClient, err := standalone.NewDockerClient(ctx)
	if err != nil {
		return fmt.Errorf("%w and no Docker engine is reachable: %v\n%s", notRunningErr, err, color.YellowString(installHint))
	}
	defer dockerClient.Close()

	if err := standalone.InstallRunner(ctx, dockerClient, printer, installOptions("", true)); err != nil {
		return fmt.Errorf("unable to install runner: %w", err)
	}

	deadline := time.Now().Add(readyWaitTimeout)
	for time.Now().Before(deadline) {
		if runnerClient.Status().Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return errors.New("runner container started but the worker did not become ready")
}

// installOptions builds runner install options from the resolved runtime
// configuration.
func installOptions(image string, pullImage bool) standalone.RunnerOptions {
	return standalone.RunnerOptions{
		Image:          image,
		Port:           workerAPIPort,
		GPU:            runtimeCfg.GPUClass(),
		TimeoutMinutes: runtimeCfg.TimeoutMinutes,
		PullImage:      pullImage,
	}
}

// commandPrinter wraps a cobra.Command to implement standalone.StatusPrinter.
type commandPrinter struct {
	cmd *cobra.Command
}

func (cp *commandPrinter) Printf(format string, args ...any) {
	cp.cmd.Printf(format, args...)
}

func (cp *commandPrinter) Println(args ...any) {
	cp.cmd.Println(args...)
}

func (cp *commandPrinter) Write(p []byte) (n int, err error) {
	return cp.cmd.OutOrStdout().Write(p)
}

func (cp *commandPrinter) GetFdInfo() (fd uintptr, isTerminal bool) {
	if file, ok := cp.cmd.OutOrStdout().(*os.File); ok {
		return term.GetFdInfo(file)
	}
	return term.GetFdInfo(os.Stdout)
}

// asPrinter wraps a cobra.Command to implement standalone.StatusPrinter.
func asPrinter(cmd *cobra.Command) standalone.StatusPrinter {
	return &commandPrinter{cmd: cmd}
}
