package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"crypto-watcher/internal/infrastructure/logging"
)

// suspiciousPatterns are logged, never blocked
var suspiciousPatterns = []string{
	"../",
	"<script",
	"select ",
	"union ",
	"exec(",
	"eval(",
}

// LoggingMiddleware logs the incoming request with the http domain logger.
// Runs after RequestTracingMiddleware so the request id is in the context.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.HTTP().RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), getRemoteIP(r))

		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers": extractImportantHeaders(r),
			"query":   r.URL.RawQuery,
		})

		if isSuspiciousRequest(r) {
			logging.HTTP().Warn(ctx, "Suspicious request pattern", logging.Fields{
				logging.FieldPath:     r.URL.Path,
				logging.FieldRemoteIP: getRemoteIP(r),
			})
		}

		next.ServeHTTP(w, r)
	})
}

// extractImportantHeaders keeps only headers safe to log
func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)

	for _, header := range []string{"Accept", "Accept-Encoding", "Origin", "X-Forwarded-For", "X-Real-IP"} {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}

	return headers
}

func isSuspiciousRequest(r *http.Request) bool {
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}

	target := strings.ToLower(r.URL.Path + "?" + query)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(target, pattern) {
			return true
		}
	}
	return false
}
