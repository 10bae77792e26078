// Package client implements the HTTP client used by the CLI to talk to the
// worker daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/hemeai/temstapro-runner/pkg/predictor"
	"github.com/hemeai/temstapro-runner/pkg/version"
	"github.com/hemeai/temstapro-runner/pkg/worker"
)

// ErrServiceUnavailable indicates the worker daemon is not reachable.
var ErrServiceUnavailable = errors.New("service unavailable")

// Client talks to a worker daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the worker at baseURL, e.g.
// "http://127.0.0.1:12520". Requests carry no client-side timeout; the
// prediction deadline is enforced by the worker.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Status describes the worker's availability.
type Status struct {
	Running bool
	Info    *worker.StatusResponse
	Error   error
}

// Status queries the worker status endpoint.
func (c *Client) Status() Status {
	resp, err := c.doRequest(context.Background(), http.MethodGet, worker.StatusPath, nil)
	if err != nil {
		err = c.handleQueryError(err, worker.StatusPath)
		if errors.Is(err, ErrServiceUnavailable) {
			return Status{Running: false}
		}
		return Status{Running: false, Error: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{Running: false, Error: fmt.Errorf("unexpected status response: %s", resp.Status)}
	}
	var info worker.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Status{Running: true, Error: fmt.Errorf("failed to decode status response: %w", err)}
	}
	return Status{Running: true, Info: &info}
}

// Predict runs a single prediction on the worker. Errors reported by the
// worker (including TemStaPro exit failures) are surfaced verbatim.
func (c *Client) Predict(ctx context.Context, opts predictor.Options) (*predictor.Result, error) {
	body, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, worker.PredictPath, bytes.NewReader(body))
	if err != nil {
		return nil, c.handleQueryError(err, worker.PredictPath)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s", strings.TrimSpace(string(respBody)))
	}

	var result predictor.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}
	return &result, nil
}

// doRequest performs an HTTP request against the worker, mapping connection
// refusal and 503 responses to ErrServiceUnavailable.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "temstapro-cli/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		resp.Body.Close()
		return nil, ErrServiceUnavailable
	}

	return resp, nil
}

func (c *Client) handleQueryError(err error, path string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return ErrServiceUnavailable
	}
	return fmt.Errorf("error querying %s: %w", path, err)
}
