package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemeai/temstapro-runner/pkg/gpu"
)

func TestLoadRuntimeDefaults(t *testing.T) {
	t.Setenv("GPU", "")

	cfg, err := LoadRuntime()
	require.NoError(t, err)

	assert.Equal(t, gpu.ClassNone, cfg.GPUClass())
	assert.Equal(t, 180, cfg.TimeoutMinutes)
	assert.Equal(t, 180*time.Minute, cfg.Timeout())
}

func TestLoadRuntimeFromEnvironment(t *testing.T) {
	t.Setenv("GPU", "H100")
	t.Setenv("TIMEOUT", "45")

	cfg, err := LoadRuntime()
	require.NoError(t, err)

	assert.Equal(t, gpu.ClassH100, cfg.GPUClass())
	assert.Equal(t, 45, cfg.TimeoutMinutes)
	assert.Equal(t, 45*time.Minute, cfg.Timeout())
}

func TestLoadRuntimeUnknownGPU(t *testing.T) {
	t.Setenv("GPU", "T4")

	cfg, err := LoadRuntime()
	require.NoError(t, err)

	assert.Equal(t, gpu.ClassNone, cfg.GPUClass())
}

func TestLoadRuntimeInvalidTimeout(t *testing.T) {
	t.Setenv("TIMEOUT", "soon")

	_, err := LoadRuntime()
	assert.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	cfg, err := LoadWorker()
	require.NoError(t, err)

	assert.Equal(t, uint16(12520), cfg.Port)
	assert.Equal(t, "python3", cfg.Python)
	assert.Equal(t, "/workspace/TemStaPro", cfg.RepoPath)
	assert.Equal(t, "/cache/hf", cfg.ModelCachePath)
	assert.Equal(t, "/cache/embeddings", cfg.EmbeddingsCachePath)
	assert.Equal(t, "/tmp/temstapro", cfg.ScratchPath)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("TEMSTAPRO_PORT", "9000")
	t.Setenv("TEMSTAPRO_REPO", "/opt/TemStaPro")

	cfg, err := LoadWorker()
	require.NoError(t, err)

	assert.Equal(t, uint16(9000), cfg.Port)
	assert.Equal(t, "/opt/TemStaPro", cfg.RepoPath)
}
