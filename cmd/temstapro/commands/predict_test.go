package commands

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
)

func TestPredictCmdFlags(t *testing.T) {
	cmd := newPredictCmd()

	defaults := map[string]string{
		"fasta":                   "",
		"output":                  "",
		"per-res-output":          "",
		"per-segment-output":      "",
		"plot-dir":                "",
		"more-thresholds":         "false",
		"portion-size":            "1000",
		"segment-size":            "41",
		"window-size-predictions": "81",
		"curve-smoothening":       "false",
	}

	for name, def := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("--%s flag not found", name)
		}
		if flag.DefValue != def {
			t.Errorf("expected default %q for --%s, got %q", def, name, flag.DefValue)
		}
	}

	if cmd.Flags().ShorthandLookup("f") == nil {
		t.Fatal("-f shorthand flag not found")
	}
	if cmd.Flags().ShorthandLookup("o") == nil {
		t.Fatal("-o shorthand flag not found")
	}
}

func TestRunPredictMissingFasta(t *testing.T) {
	cmd := newPredictCmd()

	// A missing input must fail fast, before any worker interaction.
	err := runPredict(cmd, predictFlags{
		fastaPath: filepath.Join(t.TempDir(), "missing.fasta"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing FASTA file")
	}
	if !strings.Contains(err.Error(), "FASTA file not found") {
		t.Errorf("error should mention the missing FASTA file, got: %v", err)
	}
}

func TestRunPredictDirectoryFasta(t *testing.T) {
	cmd := newPredictCmd()

	err := runPredict(cmd, predictFlags{fastaPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected an error for a directory FASTA path")
	}
	if !strings.Contains(err.Error(), "not a regular file") {
		t.Errorf("error should report a non-regular file, got: %v", err)
	}
}

func TestRunPredictUnreadableFastaPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on ENOTDIR stat semantics")
	}
	cmd := newPredictCmd()

	// A path routed through a regular file fails stat with ENOTDIR; the
	// underlying cause must survive into the error, not be reported as a
	// missing file.
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := runPredict(cmd, predictFlags{
		fastaPath: filepath.Join(parent, "protein.fasta"),
	})
	if err == nil {
		t.Fatal("expected an error for an unreadable FASTA path")
	}
	if strings.Contains(err.Error(), "FASTA file not found") {
		t.Errorf("stat failure should not be reported as a missing file, got: %v", err)
	}
	if !strings.Contains(err.Error(), "failed to stat FASTA file") {
		t.Errorf("error should report the stat failure, got: %v", err)
	}
	if !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("error should wrap the underlying stat error, got: %v", err)
	}
}

func TestBaseIfSet(t *testing.T) {
	if got := baseIfSet(""); got != "" {
		t.Errorf("baseIfSet(\"\") = %q, want empty", got)
	}
	if got := baseIfSet("/tmp/out/mean.tsv"); got != "mean.tsv" {
		t.Errorf("baseIfSet() = %q, want %q", got, "mean.tsv")
	}
}
