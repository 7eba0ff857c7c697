package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

// RateLimit throttles per client IP. A zero request budget disables it.
func RateLimit(requests int, window time.Duration, lg *slog.Logger) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			transport.WriteJSON(w, http.StatusTooManyRequests,
				internal.APIResponse{Success: false, Error: "Too many requests"}, lg)
		}),
	)
}
