package handlers

import (
	"errors"
	"net/http"
	"time"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/upstream/coingecko"
)

// AppHandler is a handler that returns its failure instead of writing it.
// Every returned error ends in the same generic 500 response.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

func (fn AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		writeInternalError(w, r, err)
	}
}

// writeInternalError logs the full error and answers with a body that never
// includes it
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	fields := logging.Fields{}
	var fetchErr *coingecko.FetchError
	if errors.As(err, &fetchErr) {
		fields[logging.FieldExternalEndpoint] = fetchErr.Endpoint
		fields[logging.FieldExternalStatus] = fetchErr.StatusCode
	}
	if errors.Is(err, coingecko.ErrNotInitialized) {
		fields["session_open"] = false
	}

	logging.ErrorWithError(ctx, "Unhandled request error", err, fields)

	var duration float64
	if start := logging.GetStartTime(ctx); !start.IsZero() {
		duration = float64(time.Since(start).Nanoseconds()) / 1e6
	}
	logging.HTTP().RequestFailed(ctx, r.Method, r.URL.Path, http.StatusInternalServerError, err, duration)

	writeJSONResponse(w, http.StatusInternalServerError, dto.NewErrorResponse(dto.GenericErrorMessage))
}
