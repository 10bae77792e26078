// Package worker exposes the prediction runner over HTTP. It is the server
// side of the protocol spoken by pkg/client.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hemeai/temstapro-runner/pkg/config"
	"github.com/hemeai/temstapro-runner/pkg/diskusage"
	"github.com/hemeai/temstapro-runner/pkg/gpu"
	"github.com/hemeai/temstapro-runner/pkg/logging"
	"github.com/hemeai/temstapro-runner/pkg/middleware"
	"github.com/hemeai/temstapro-runner/pkg/predictor"
	"github.com/hemeai/temstapro-runner/pkg/version"
)

// API paths served by the worker.
const (
	StatusPath  = "/status"
	PredictPath = "/v1/predict"
)

// StatusResponse is the payload returned by GET /status.
type StatusResponse struct {
	Version              string   `json:"version"`
	GPUClass             string   `json:"gpu_class"`
	TimeoutMinutes       int      `json:"timeout_minutes"`
	HostGPUs             []string `json:"host_gpus,omitempty"`
	ModelCacheBytes      int64    `json:"model_cache_bytes"`
	EmbeddingsCacheBytes int64    `json:"embeddings_cache_bytes"`
}

// Server routes worker API requests to the prediction runner.
type Server struct {
	log         logging.Logger
	runner      *predictor.Runner
	workerCfg   config.Worker
	runtimeCfg  config.Runtime
	router      *http.ServeMux
	httpHandler http.Handler
}

// NewServer creates a worker API server around the given runner.
func NewServer(log logging.Logger, runner *predictor.Runner, workerCfg config.Worker, runtimeCfg config.Runtime) *Server {
	s := &Server{
		log:        log,
		runner:     runner,
		workerCfg:  workerCfg,
		runtimeCfg: runtimeCfg,
		router:     http.NewServeMux(),
	}

	s.router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	for route, handler := range s.routeHandlers() {
		s.router.HandleFunc(route, handler)
	}
	s.httpHandler = middleware.Logging(log, s.router)

	return s
}

func (s *Server) routeHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET " + StatusPath:   s.handleStatus,
		"POST " + PredictPath: s.handlePredict,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpHandler.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := StatusResponse{
		Version:        version.Version,
		GPUClass:       s.runtimeCfg.GPUClass().String(),
		TimeoutMinutes: s.runtimeCfg.TimeoutMinutes,
	}

	if gpus, err := gpu.HostGPUs(); err != nil {
		s.log.Warnf("GPU detection failed: %v", err)
	} else {
		status.HostGPUs = gpus
	}

	var err error
	if status.ModelCacheBytes, err = diskusage.Size(s.workerCfg.ModelCachePath); err != nil {
		s.log.Warnf("failed to size model cache: %v", err)
	}
	if status.EmbeddingsCacheBytes, err = diskusage.Size(s.workerCfg.EmbeddingsCachePath); err != nil {
		s.log.Warnf("failed to size embeddings cache: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log.Warnf("error while encoding status response: %v", err)
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var opts predictor.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if opts.FastaName == "" {
		http.Error(w, "fasta_name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runtimeCfg.Timeout())
	defer cancel()

	result, err := s.runner.Predict(ctx, opts)
	if err != nil {
		var exitErr *predictor.ExitError
		switch {
		case errors.As(err, &exitErr):
			http.Error(w, exitErr.Error(), http.StatusInternalServerError)
		case errors.Is(err, context.DeadlineExceeded):
			http.Error(w, "prediction timed out after "+s.runtimeCfg.Timeout().String(), http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Warnf("error while encoding prediction response: %v", err)
	}
}

// Serve runs the worker HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s,
	}

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()
	s.log.Infof("worker listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serveErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
