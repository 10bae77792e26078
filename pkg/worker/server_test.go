package worker

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemeai/temstapro-runner/pkg/config"
	"github.com/hemeai/temstapro-runner/pkg/logging"
	"github.com/hemeai/temstapro-runner/pkg/predictor"
)

const fakePredictor = `#!/bin/sh
echo "prediction complete"
while [ $# -gt 0 ]; do
  case "$1" in
    --mean-output) shift; printf 'ID\tScore\n' > "$1" ;;
  esac
  shift
done
`

const brokenPredictor = `#!/bin/sh
echo "boom" 1>&2
exit 2
`

const stuckPredictor = `#!/bin/sh
sleep 300
`

func newTestServer(t *testing.T, script string) *httptest.Server {
	return newTestServerWithTimeout(t, script, 1)
}

func newTestServerWithTimeout(t *testing.T, script string, timeoutMinutes int) *httptest.Server {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test predictor requires /bin/sh")
	}

	repoDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "temstapro"), []byte(script), 0o755))

	cacheDir := t.TempDir()
	workerCfg := config.Worker{
		Python:              "/bin/sh",
		RepoPath:            repoDir,
		ModelCachePath:      filepath.Join(cacheDir, "hf"),
		EmbeddingsCachePath: filepath.Join(cacheDir, "embeddings"),
		ScratchPath:         filepath.Join(cacheDir, "scratch"),
	}
	runtimeCfg := config.Runtime{TimeoutMinutes: timeoutMinutes}

	runner := predictor.NewRunner(logging.NewComponent("test"), workerCfg)
	server := NewServer(logging.NewComponent("test"), runner, workerCfg, runtimeCfg)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

func postPredict(t *testing.T, ts *httptest.Server, opts predictor.Options) *http.Response {
	t.Helper()
	body, err := json.Marshal(opts)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+PredictPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestPredictEndpoint(t *testing.T) {
	ts := newTestServer(t, fakePredictor)

	resp := postPredict(t, ts, predictor.Options{
		FastaName:      "protein.fasta",
		FastaBytes:     []byte(">seq1\nMKV\n"),
		MeanOutputName: "mean.tsv",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result predictor.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Contains(t, result.Stdout, "prediction complete")
	assert.Equal(t, []byte("ID\tScore\n"), result.Files[predictor.OutputMean])
	assert.Nil(t, result.Files[predictor.OutputPerRes])
}

func TestPredictEndpointToolFailure(t *testing.T) {
	ts := newTestServer(t, brokenPredictor)

	resp := postPredict(t, ts, predictor.Options{
		FastaName:  "protein.fasta",
		FastaBytes: []byte(">seq1\nMKV\n"),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "exit code 2")
	assert.Contains(t, string(body), "boom")
}

func TestPredictEndpointDeadline(t *testing.T) {
	// A zero-minute timeout expires the request context before the
	// subprocess can finish, so the stuck predictor never runs to
	// completion.
	ts := newTestServerWithTimeout(t, stuckPredictor, 0)

	resp := postPredict(t, ts, predictor.Options{
		FastaName:  "protein.fasta",
		FastaBytes: []byte(">seq1\nMKV\n"),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "prediction timed out")
}

func TestPredictEndpointRequiresName(t *testing.T) {
	ts := newTestServer(t, fakePredictor)

	resp := postPredict(t, ts, predictor.Options{FastaBytes: []byte(">seq1\nMKV\n")})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t, fakePredictor)

	resp, err := http.Get(ts.URL + StatusPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "none", status.GPUClass)
	assert.Equal(t, 1, status.TimeoutMinutes)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, fakePredictor)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
