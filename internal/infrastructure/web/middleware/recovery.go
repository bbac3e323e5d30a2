package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

// RecoveryMiddleware turns a panic in any handler into the generic 500 body
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			metrics.RecordPanicRecovered()
			logging.HTTP().RequestFailed(r.Context(), r.Method, r.URL.Path, http.StatusInternalServerError,
				fmt.Errorf("panic: %v", rec), 0)
			logging.Debug(r.Context(), "Recovered panic stack", logging.Fields{
				"stack": string(debug.Stack()),
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(dto.GenericErrorMessage))
		}()

		next.ServeHTTP(w, r)
	})
}
