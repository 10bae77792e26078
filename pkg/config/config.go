// Package config resolves the runner configuration from the process
// environment. Configuration is read once at startup and passed explicitly;
// nothing in this repository reads the environment afterwards.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hemeai/temstapro-runner/pkg/gpu"
)

// Runtime holds the execution settings shared by the CLI and the worker.
type Runtime struct {
	// GPU selects the GPU class used for prediction. Values outside the
	// supported set (including an unset or empty variable) resolve to no
	// GPU.
	GPU string `envconfig:"GPU"`
	// TimeoutMinutes is the per-prediction deadline in minutes.
	TimeoutMinutes int `envconfig:"TIMEOUT" default:"180"`
}

// Worker holds the settings consumed only by the worker daemon. The defaults
// match the runner container image layout.
type Worker struct {
	// Host is the address the worker HTTP server binds to.
	Host string `envconfig:"TEMSTAPRO_HOST" default:""`
	// Port is the port the worker HTTP server listens on.
	Port uint16 `envconfig:"TEMSTAPRO_PORT" default:"12520"`
	// Python is the interpreter used to invoke the TemStaPro CLI.
	Python string `envconfig:"TEMSTAPRO_PYTHON" default:"python3"`
	// RepoPath is the checkout of the TemStaPro repository inside the
	// container. The predictor script lives at <RepoPath>/temstapro.
	RepoPath string `envconfig:"TEMSTAPRO_REPO" default:"/workspace/TemStaPro"`
	// ModelCachePath is the mount point of the model weights volume.
	ModelCachePath string `envconfig:"TEMSTAPRO_MODEL_CACHE" default:"/cache/hf"`
	// EmbeddingsCachePath is the mount point of the embeddings volume.
	EmbeddingsCachePath string `envconfig:"TEMSTAPRO_EMBEDDINGS_CACHE" default:"/cache/embeddings"`
	// ScratchPath is the root under which per-prediction working
	// directories are created.
	ScratchPath string `envconfig:"TEMSTAPRO_SCRATCH" default:"/tmp/temstapro"`
}

// LoadRuntime resolves the runtime configuration from the environment.
func LoadRuntime() (Runtime, error) {
	var c Runtime
	if err := envconfig.Process("", &c); err != nil {
		return Runtime{}, fmt.Errorf("failed to process runtime configuration: %w", err)
	}
	return c, nil
}

// LoadWorker resolves the worker configuration from the environment.
func LoadWorker() (Worker, error) {
	var c Worker
	if err := envconfig.Process("", &c); err != nil {
		return Worker{}, fmt.Errorf("failed to process worker configuration: %w", err)
	}
	return c, nil
}

// GPUClass returns the resolved GPU class.
func (c Runtime) GPUClass() gpu.Class {
	return gpu.ParseClass(c.GPU)
}

// Timeout returns the per-prediction deadline.
func (c Runtime) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}
