package httpx

import (
	"net/http"
	"time"

	"libraryapi/internal/metrics"
)

// MetricsMiddleware must wrap the ServeMux directly so that r.Pattern is
// populated once the mux has routed the request.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, r.Pattern, rw.statusCode, time.Since(start))
	})
}
