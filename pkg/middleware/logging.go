// Package middleware provides HTTP middleware for the worker server.
package middleware

import (
	"net/http"
	"time"

	"github.com/hemeai/temstapro-runner/pkg/logging"
)

// LoggingHandler logs every request served by the wrapped handler.
type LoggingHandler struct {
	Log     logging.Logger
	Handler http.Handler
}

func (h *LoggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.Handler.ServeHTTP(w, r)
	h.Log.Infof("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
}

// Logging wraps handler with request logging.
func Logging(log logging.Logger, handler http.Handler) http.Handler {
	return &LoggingHandler{Log: log, Handler: handler}
}
