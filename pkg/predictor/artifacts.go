package predictor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// collectOutputs reads each generated output file, keyed by its output
// identifier. An empty path (output not requested) or a file the tool did
// not produce records a nil value.
func collectOutputs(paths map[string]string) (map[string][]byte, error) {
	results := make(map[string][]byte, len(paths))
	for key, path := range paths {
		if path == "" {
			results[key] = nil
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				results[key] = nil
				continue
			}
			return nil, fmt.Errorf("failed to read output %s: %w", key, err)
		}
		results[key] = data
	}
	return results, nil
}

// gatherPlotFiles returns every regular file under plotDir, paired with its
// slash-separated path relative to plotDir, in sorted order. An absent
// directory yields an empty list.
func gatherPlotFiles(plotDir string) ([]PlotFile, error) {
	var plots []PlotFile
	err := filepath.WalkDir(plotDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(plotDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		plots = append(plots, PlotFile{
			Path: filepath.ToSlash(rel),
			Data: data,
		})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to gather plot files: %w", err)
	}
	sort.Slice(plots, func(i, j int) bool {
		return plots[i].Path < plots[j].Path
	})
	return plots, nil
}
