package http

import (
	"net/http"

	"github.com/MKhiriev/medsync/internal/app"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/utils"
)

// withRateLimit rejects requests with 429 once the shared token bucket is
// empty. It is a pass-through when no limiter is configured.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			logger.FromRequest(r).Warn().Str("func", "Handler.withRateLimit").Msg("request rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			utils.WriteError(w, app.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
