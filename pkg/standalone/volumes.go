package standalone

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
)

// Durable cache volumes shared by all runner invocations. Their contents are
// owned by the TemStaPro CLI and never invalidated here.
const (
	// ModelCacheVolume stores downloaded ProtTrans model weights.
	ModelCacheVolume = "temstapro-model-cache"
	// EmbeddingsCacheVolume stores precomputed sequence embeddings.
	EmbeddingsCacheVolume = "temstapro-embeddings-cache"

	// Mount points inside the runner container.
	ModelCacheMountPath      = "/cache/hf"
	EmbeddingsCacheMountPath = "/cache/embeddings"
)

// EnsureCacheVolumes creates the model weights and embeddings volumes.
// Volume creation is idempotent on the Docker engine side.
func EnsureCacheVolumes(ctx context.Context, dockerClient client.VolumeAPIClient, printer StatusPrinter) error {
	for _, name := range []string{ModelCacheVolume, EmbeddingsCacheVolume} {
		if _, err := dockerClient.VolumeCreate(ctx, volume.CreateOptions{Name: name}); err != nil {
			return fmt.Errorf("failed to create volume %s: %w", name, err)
		}
	}
	return nil
}

// RemoveCacheVolumes removes both cache volumes. Cached model weights and
// embeddings are lost and will be re-downloaded on the next prediction.
func RemoveCacheVolumes(ctx context.Context, dockerClient client.VolumeAPIClient, printer StatusPrinter) error {
	for _, name := range []string{ModelCacheVolume, EmbeddingsCacheVolume} {
		if err := dockerClient.VolumeRemove(ctx, name, false); err == nil {
			printer.Println("Removed volume", name)
		}
	}
	return nil
}
