package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout caps the lifetime of every request context. Storage calls that
// overrun the deadline fail with a context error, which the handlers map to
// 503 instead of letting the request hang.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
