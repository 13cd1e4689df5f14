package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory-service/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	apiKeyHeader    = "X-API-KEY"
)

func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := logg.WithRequestID(r.Context(), reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			logg.Debug(ctx, "request.start")

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}

func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := fmt.Errorf("panic: %v", rec)
					ctx := logg.WithFields(r.Context(), map[string]any{"panic": rec})
					logg.Error(ctx, "panic.recovered", err)
					writeFailure(w, http.StatusInternalServerError, "Unexpected error", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// APIKey rejects requests whose X-API-KEY header does not match key.
func APIKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(r.Header.Get(apiKeyHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
				writeFailure(w, http.StatusUnauthorized, "Not authorized", "API Key invalid or null")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
