package api

import (
	"net/http"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status, and latency for every request.
// Bodies are never logged; they carry financial content.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		logger.Debug("HTTP %s %s -> %d (%dms)",
			r.Method, r.URL.Path, rec.status, time.Since(start).Milliseconds())
	})
}
