package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// authenticate guards protected routes. Missing header, wrong scheme and
// invalid token all produce the same 401 body, so a caller learns nothing
// about which check failed.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		if err := s.auth.VerifyToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogger logs every request with method, path, status, duration and a
// generated request id.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info(r.Context(), "Request handled",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}
