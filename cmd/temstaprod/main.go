// temstaprod is the worker daemon. It runs inside the runner container and
// serves prediction requests over HTTP.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hemeai/temstapro-runner/pkg/config"
	"github.com/hemeai/temstapro-runner/pkg/logging"
	"github.com/hemeai/temstapro-runner/pkg/predictor"
	"github.com/hemeai/temstapro-runner/pkg/version"
	"github.com/hemeai/temstapro-runner/pkg/worker"
)

func main() {
	log := logging.NewComponent("temstaprod")

	runtimeCfg, err := config.LoadRuntime()
	if err != nil {
		log.Errorf("invalid runtime configuration: %v", err)
		os.Exit(1)
	}
	workerCfg, err := config.LoadWorker()
	if err != nil {
		log.Errorf("invalid worker configuration: %v", err)
		os.Exit(1)
	}

	log.Infof(
		"starting temstaprod version=%s gpu=%s timeout=%dm",
		version.Version, runtimeCfg.GPUClass(), runtimeCfg.TimeoutMinutes,
	)

	runner := predictor.NewRunner(logging.NewComponent("predictor"), workerCfg)
	server := worker.NewServer(logging.NewComponent("worker"), runner, workerCfg, runtimeCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := net.JoinHostPort(workerCfg.Host, strconv.Itoa(int(workerCfg.Port)))
	if err := server.Serve(ctx, addr); err != nil {
		log.Errorf("worker server failed: %v", err)
		os.Exit(1)
	}
}
