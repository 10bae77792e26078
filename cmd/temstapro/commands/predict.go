package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hemeai/temstapro-runner/pkg/client"
	"github.com/hemeai/temstapro-runner/pkg/predictor"
)

type predictFlags struct {
	fastaPath             string
	outputPath            string
	perResOutput          string
	perSegmentOutput      string
	plotDir               string
	moreThresholds        bool
	portionSize           int
	segmentSize           int
	windowSizePredictions int
	curveSmoothening      bool
}

func newPredictCmd() *cobra.Command {
	var flags predictFlags

	c := &cobra.Command{
		Use:   "predict",
		Short: "Run a TemStaPro prediction on a local FASTA file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, flags)
		},
	}

	c.Flags().StringVarP(&flags.fastaPath, "fasta", "f", "", "Local FASTA file to predict on (required)")
	c.Flags().StringVarP(&flags.outputPath, "output", "o", "", "Local path for the mean predictions output")
	c.Flags().StringVar(&flags.perResOutput, "per-res-output", "", "Local path for the per-residue predictions output")
	c.Flags().StringVar(&flags.perSegmentOutput, "per-segment-output", "", "Local path for the per-segment predictions output")
	c.Flags().StringVar(&flags.plotDir, "plot-dir", "", "Local directory for per-residue plots")
	c.Flags().BoolVar(&flags.moreThresholds, "more-thresholds", false, "Predict with the extended threshold set")
	c.Flags().IntVar(&flags.portionSize, "portion-size", predictor.DefaultPortionSize, "Maximum number of sequences per embedding portion")
	c.Flags().IntVar(&flags.segmentSize, "segment-size", predictor.DefaultSegmentSize, "Segment size for per-segment predictions")
	c.Flags().IntVar(&flags.windowSizePredictions, "window-size-predictions", predictor.DefaultWindowSizePredictions, "Window size for smoothened per-residue predictions")
	c.Flags().BoolVar(&flags.curveSmoothening, "curve-smoothening", false, "Smoothen per-residue prediction curves")
	_ = c.MarkFlagRequired("fasta")

	return c
}

func runPredict(cmd *cobra.Command, flags predictFlags) error {
	info, err := os.Stat(flags.fastaPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("FASTA file not found: %s", flags.fastaPath)
	}
	if err != nil {
		return fmt.Errorf("failed to stat FASTA file %s: %w", flags.fastaPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("FASTA path %s is not a regular file", flags.fastaPath)
	}
	fastaBytes, err := os.ReadFile(flags.fastaPath)
	if err != nil {
		return fmt.Errorf("failed to read FASTA file %s: %w", flags.fastaPath, err)
	}

	if err := ensureRunnerAvailable(cmd, asPrinter(cmd)); err != nil {
		return err
	}

	result, err := runnerClient.Predict(cmd.Context(), predictor.Options{
		FastaName:             filepath.Base(flags.fastaPath),
		FastaBytes:            fastaBytes,
		MoreThresholds:        flags.moreThresholds,
		PortionSize:           flags.portionSize,
		SegmentSize:           flags.segmentSize,
		WindowSizePredictions: flags.windowSizePredictions,
		CurveSmoothening:      flags.curveSmoothening,
		IncludePlots:          flags.plotDir != "",
		MeanOutputName:        baseIfSet(flags.outputPath),
		PerResOutputName:      baseIfSet(flags.perResOutput),
		PerSegmentOutputName:  baseIfSet(flags.perSegmentOutput),
	})
	if err != nil {
		return handleClientError(err, "Failed to run prediction")
	}

	if err := client.WriteArtifacts(result, client.ArtifactPaths{
		MeanOutput:       flags.outputPath,
		PerResOutput:     flags.perResOutput,
		PerSegmentOutput: flags.perSegmentOutput,
		PlotDir:          flags.plotDir,
	}); err != nil {
		return fmt.Errorf("failed to write prediction artifacts: %w", err)
	}

	// Re-emit the tool's captured output on the local streams.
	if result.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	}
	return nil
}

func baseIfSet(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
