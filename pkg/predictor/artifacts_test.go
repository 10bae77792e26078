package predictor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectOutputs(t *testing.T) {
	dir := t.TempDir()
	meanPath := filepath.Join(dir, "mean.tsv")
	require.NoError(t, os.WriteFile(meanPath, []byte("ID\tScore\n"), 0o644))

	results, err := collectOutputs(map[string]string{
		OutputMean:       meanPath,
		OutputPerRes:     filepath.Join(dir, "never-written.tsv"),
		OutputPerSegment: "",
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("ID\tScore\n"), results[OutputMean])
	assert.Nil(t, results[OutputPerRes], "a file the tool did not produce is reported absent")
	assert.Nil(t, results[OutputPerSegment], "an unrequested output is reported absent")
}

func TestGatherPlotFilesSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.png"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.png"), []byte("b"), 0o644))

	plots, err := gatherPlotFiles(dir)
	require.NoError(t, err)

	require.Len(t, plots, 3)
	assert.Equal(t, "a.png", plots[0].Path)
	assert.Equal(t, "sub/b.png", plots[1].Path)
	assert.Equal(t, "z.png", plots[2].Path)
	assert.Equal(t, []byte("b"), plots[1].Data)
}

func TestGatherPlotFilesMissingDir(t *testing.T) {
	plots, err := gatherPlotFiles(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, plots)
}

func TestGatherPlotFilesSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.png"), []byte("x"), 0o644))

	plots, err := gatherPlotFiles(dir)
	require.NoError(t, err)
	require.Len(t, plots, 1)
	assert.Equal(t, "only.png", plots[0].Path)
}
