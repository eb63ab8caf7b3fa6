package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// CacheInvalidator drops every cached report.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateOnWrite drops the report cache after every successful request
// that is not a GET or HEAD.
func InvalidateOnWrite(cache CacheInvalidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			if wrapped.statusCode >= 200 && wrapped.statusCode < 300 {
				if err := cache.Invalidate(r.Context()); err != nil {
					zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to invalidate report cache")
				}
			}
		})
	}
}
