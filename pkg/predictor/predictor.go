// Package predictor runs the TemStaPro CLI as a subprocess and collects the
// artifacts it produces.
package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hemeai/temstapro-runner/pkg/config"
	"github.com/hemeai/temstapro-runner/pkg/logging"
	"github.com/hemeai/temstapro-runner/pkg/tailbuffer"
)

// Output identifiers used as keys in Result.Files.
const (
	OutputMean       = "mean"
	OutputPerRes     = "per_res"
	OutputPerSegment = "per_segment"
)

// Defaults for the TemStaPro CLI options.
const (
	DefaultPortionSize           = 1000
	DefaultSegmentSize           = 41
	DefaultWindowSizePredictions = 81
)

// stderrTailSize bounds the amount of subprocess stderr echoed to the worker
// log on failure. The error itself carries the full capture.
const stderrTailSize = 2048

// Options describes a single prediction request.
type Options struct {
	// FastaName is the file name the input is staged under. It must be a
	// bare file name without path separators.
	FastaName string `json:"fasta_name"`
	// FastaBytes is the raw FASTA content.
	FastaBytes []byte `json:"fasta_bytes"`

	MoreThresholds        bool `json:"more_thresholds"`
	PortionSize           int  `json:"portion_size"`
	SegmentSize           int  `json:"segment_size"`
	WindowSizePredictions int  `json:"window_size_predictions"`
	CurveSmoothening      bool `json:"curve_smoothening"`
	IncludePlots          bool `json:"include_plots"`

	// Output file names, relative to the per-prediction outputs directory.
	// An empty name means the corresponding output is not requested.
	MeanOutputName       string `json:"mean_output_name,omitempty"`
	PerResOutputName     string `json:"per_res_output_name,omitempty"`
	PerSegmentOutputName string `json:"per_segment_output_name,omitempty"`
}

// PlotFile is a single file discovered under the plot directory.
type PlotFile struct {
	// Path is the slash-separated path relative to the plot directory.
	Path string `json:"path"`
	Data []byte `json:"data"`
}

// Result holds everything a successful prediction produced.
type Result struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	// Files maps output identifiers to file content. A nil value records
	// that the tool ran successfully but did not produce that output.
	Files map[string][]byte `json:"files"`
	// Plots lists every file found under the plot directory, in sorted
	// order. Empty unless plots were requested.
	Plots []PlotFile `json:"plots"`
}

// ExitError reports a nonzero exit from the TemStaPro subprocess. It carries
// the full captured output so the caller can diagnose the tool's failure.
type ExitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf(
		"temstapro execution failed with exit code %d\nstdout:\n%s\nstderr:\n%s",
		e.ExitCode, e.Stdout, e.Stderr,
	)
}

// Runner executes TemStaPro predictions.
type Runner struct {
	log logging.Logger
	cfg config.Worker
}

// NewRunner creates a prediction runner.
func NewRunner(log logging.Logger, cfg config.Worker) *Runner {
	return &Runner{
		log: log,
		cfg: cfg,
	}
}

// scriptPath returns the path of the TemStaPro CLI entry script.
func (r *Runner) scriptPath() string {
	return filepath.Join(r.cfg.RepoPath, "temstapro")
}

// modelDir returns the ProtTrans weights directory inside the model cache.
func (r *Runner) modelDir() string {
	return filepath.Join(r.cfg.ModelCachePath, "prottrans")
}

// Predict runs TemStaPro once on the given input. Each invocation gets its
// own working directory, removed on every exit path, so concurrent calls do
// not interfere.
func (r *Runner) Predict(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := validateFileName(opts.FastaName); err != nil {
		return nil, fmt.Errorf("invalid FASTA name: %w", err)
	}
	for _, name := range []string{opts.MeanOutputName, opts.PerResOutputName, opts.PerSegmentOutputName} {
		if name == "" {
			continue
		}
		if err := validateFileName(name); err != nil {
			return nil, fmt.Errorf("invalid output name: %w", err)
		}
	}

	if err := r.ensureCacheDirs(); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(r.cfg.ScratchPath, "predict-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.log.Warnf("failed to remove working directory %s: %v", workDir, err)
		}
	}()

	inputPath := filepath.Join(workDir, opts.FastaName)
	outputsDir := filepath.Join(workDir, "outputs")
	plotsDir := filepath.Join(workDir, "plots")
	for _, dir := range []string{outputsDir, plotsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(inputPath, opts.FastaBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to stage FASTA input: %w", err)
	}

	outputPaths := map[string]string{
		OutputMean:       joinIfNamed(outputsDir, opts.MeanOutputName),
		OutputPerRes:     joinIfNamed(outputsDir, opts.PerResOutputName),
		OutputPerSegment: joinIfNamed(outputsDir, opts.PerSegmentOutputName),
	}

	args := commandArgs(r.scriptPath(), inputPath, r.modelDir(), r.cfg.RepoPath, r.cfg.EmbeddingsCachePath, plotsDir, outputPaths, opts)
	r.log.Infof("temstapro args: %v", args)

	var stdout, stderr bytes.Buffer
	errTail := tailbuffer.NewTailBuffer(stderrTailSize)

	cmd := exec.CommandContext(ctx, r.cfg.Python, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), r.cacheEnv()...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, errTail)

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("temstapro execution aborted: %w", ctx.Err())
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			tail := new(strings.Builder)
			if _, err := io.Copy(tail, errTail); err != nil {
				r.log.Warnf("failed to read stderr tail: %v", err)
			}
			r.log.Warnf("temstapro exited with code %d, stderr tail: %s", exitErr.ExitCode(), tail.String())
			return nil, &ExitError{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return nil, fmt.Errorf("failed to run temstapro: %w", runErr)
	}

	files, err := collectOutputs(outputPaths)
	if err != nil {
		return nil, err
	}

	var plots []PlotFile
	if opts.IncludePlots {
		plots, err = gatherPlotFiles(plotsDir)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Files:  files,
		Plots:  plots,
	}, nil
}

// ensureCacheDirs creates the cache directories the TemStaPro CLI expects.
func (r *Runner) ensureCacheDirs() error {
	for _, dir := range []string{r.cfg.ModelCachePath, r.cfg.EmbeddingsCachePath, r.modelDir(), r.cfg.ScratchPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	return nil
}

// cacheEnv returns the cache environment consumed by huggingface and torch.
// It is passed on the subprocess rather than set process-wide.
func (r *Runner) cacheEnv() []string {
	return []string{
		"HF_HOME=" + r.cfg.ModelCachePath,
		"TRANSFORMERS_CACHE=" + filepath.Join(r.cfg.ModelCachePath, "transformers"),
		"XDG_CACHE_HOME=" + r.cfg.ModelCachePath,
		"TORCH_HOME=" + filepath.Join(r.cfg.ModelCachePath, "torch"),
	}
}

// commandArgs reproduces the documented TemStaPro CLI flags.
func commandArgs(script, input, modelDir, repoDir, embeddingsDir, plotsDir string, outputPaths map[string]string, opts Options) []string {
	args := []string{
		script,
		"-f", input,
		"-d", modelDir,
		"-t", repoDir,
		"-e", embeddingsDir,
		"--portion-size", strconv.Itoa(opts.PortionSize),
		"--segment-size", strconv.Itoa(opts.SegmentSize),
		"--window-size-predictions", strconv.Itoa(opts.WindowSizePredictions),
	}
	if opts.MoreThresholds {
		args = append(args, "--more-thresholds")
	}
	if opts.CurveSmoothening {
		args = append(args, "--curve-smoothening")
	}
	if path := outputPaths[OutputMean]; path != "" {
		args = append(args, "--mean-output", path)
	}
	if path := outputPaths[OutputPerRes]; path != "" {
		args = append(args, "--per-res-output", path)
	}
	if path := outputPaths[OutputPerSegment]; path != "" {
		args = append(args, "--per-segment-output", path)
	}
	if opts.IncludePlots {
		args = append(args, "--per-residue-plot-dir", plotsDir)
	}
	return args
}

// withDefaults fills in zero-valued sizes with the TemStaPro defaults.
func (o Options) withDefaults() Options {
	if o.PortionSize == 0 {
		o.PortionSize = DefaultPortionSize
	}
	if o.SegmentSize == 0 {
		o.SegmentSize = DefaultSegmentSize
	}
	if o.WindowSizePredictions == 0 {
		o.WindowSizePredictions = DefaultWindowSizePredictions
	}
	return o
}

// validateFileName ensures name is a bare file name safe to join under the
// working directory.
func validateFileName(name string) error {
	if name == "" {
		return errors.New("name is empty")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("name %q must not contain path separators", name)
	}
	return nil
}

func joinIfNamed(dir, name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
