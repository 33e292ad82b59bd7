package httpapi

import "net/http"

// recordingWriter captures the status code a handler writes so the logging
// middleware can report it.
type recordingWriter struct {
	inner      http.ResponseWriter
	statusCode int
}

func (r *recordingWriter) Header() http.Header {
	return r.inner.Header()
}

func (r *recordingWriter) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.inner.WriteHeader(statusCode)
}

func (r *recordingWriter) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.inner.Write(b)
}

func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := &recordingWriter{inner: w}
		next(rw, r)
		s.logger.Info(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path, "status", rw.statusCode)
	}
}
