package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
)

// withRateLimit rejects requests of a user whose token bucket is empty with
// 429 and a Retry-After header in whole seconds. It must run after auth.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, wait := h.limiter.Allow(userID)
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		logger.FromRequest(r).Warn().Dur("retry_after", wait).Msg("rate limit exceeded")
		h.metrics.ObserveRateLimited("http")

		w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
		http.Error(w, app.MsgTooManyRequests, http.StatusTooManyRequests)
	})
}
