package standalone

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
)

// EnsureRunnerImage pulls the runner container image, displaying progress on
// the printer.
func EnsureRunnerImage(ctx context.Context, dockerClient client.ImageAPIClient, imageName string, printer StatusPrinter) error {
	out, err := dockerClient.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer out.Close()

	// Display pull progress using Docker's built-in display handler.
	fd, isTerminal := printer.GetFdInfo()
	if err := jsonmessage.DisplayJSONMessagesStream(out, printer, fd, isTerminal, nil); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}

	printer.Println("Successfully pulled", imageName)
	return nil
}

// PruneRunnerImages removes the runner container image, if present.
func PruneRunnerImages(ctx context.Context, dockerClient client.ImageAPIClient, imageName string, printer StatusPrinter) error {
	if _, err := dockerClient.ImageRemove(ctx, imageName, image.RemoveOptions{}); err == nil {
		printer.Println("Removed image", imageName)
	}
	return nil
}
