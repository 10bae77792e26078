package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hemeai/temstapro-runner/pkg/predictor"
)

// ArtifactPaths holds the local destinations for prediction artifacts. An
// empty path means the corresponding artifact is discarded.
type ArtifactPaths struct {
	MeanOutput       string
	PerResOutput     string
	PerSegmentOutput string
	PlotDir          string
}

// WriteArtifacts writes the returned artifacts to their requested local
// paths, creating parent directories as needed. Artifacts without a
// requested path are discarded even if the worker produced them.
func WriteArtifacts(result *predictor.Result, paths ArtifactPaths) error {
	var g errgroup.Group
	g.Go(func() error {
		return writeOptionalFile(paths.MeanOutput, result.Files[predictor.OutputMean])
	})
	g.Go(func() error {
		return writeOptionalFile(paths.PerResOutput, result.Files[predictor.OutputPerRes])
	})
	g.Go(func() error {
		return writeOptionalFile(paths.PerSegmentOutput, result.Files[predictor.OutputPerSegment])
	})
	g.Go(func() error {
		return writePlots(paths.PlotDir, result.Plots)
	})
	return g.Wait()
}

// writeOptionalFile writes data to path when both a destination was
// requested and the worker produced content.
func writeOptionalFile(path string, data []byte) error {
	if path == "" || data == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writePlots writes every plot entry under dir, preserving relative paths.
func writePlots(dir string, plots []predictor.PlotFile) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory %s: %w", dir, err)
	}
	for _, plot := range plots {
		target := filepath.Join(dir, filepath.FromSlash(plot.Path))
		if rel, err := filepath.Rel(dir, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("plot path %q escapes the plot directory", plot.Path)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for plot %s: %w", plot.Path, err)
		}
		if err := os.WriteFile(target, plot.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write plot %s: %w", plot.Path, err)
		}
	}
	return nil
}
