package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
)

const (
	maxLimiters = 10000
	limiterTTL  = 10 * time.Minute
)

// RateLimitMiddleware ограничивает частоту запросов каждого пользователя.
// Без авторизации ключом служит IP клиента.
func RateLimitMiddleware(log *slog.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	limiters := cache.NewLRU[*rate.Limiter](maxLimiters, limiterTTL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := UserIDFromContext(r.Context())
			if !ok {
				key = clientIP(r)
			}
			limiter, _ := limiters.GetOrCreate(key, func() (*rate.Limiter, error) {
				return rate.NewLimiter(rate.Limit(rps), burst), nil
			})
			if !limiter.Allow() {
				log.Warn("too many requests",
					slog.String("key", key),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
