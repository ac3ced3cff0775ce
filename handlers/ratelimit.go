package handlers

import (
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

// chatRateWindow is the minimum interval between chat requests per client.
// It mirrors the client-side throttle so a misbehaving client cannot
// sidestep it.
const chatRateWindow = 2 * time.Second

// RateLimit wraps next with a per-client-IP minimum interval enforced via
// a Redis SET NX key. A nil client disables limiting; Redis being down
// fails open, chat availability wins over throttling.
func RateLimit(rdb *redis.Client, next http.Handler) http.Handler {
	if rdb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:chat:" + clientIP(r)
		ok, err := rdb.SetNX(r.Context(), key, 1, chatRateWindow).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			writeCORS(w)
			writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many requests, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
