package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"swasth-sathi/internal/infrastructure/cache"
	"swasth-sathi/pkg/response"

	"github.com/sirupsen/logrus"
)

// RateLimiter is a fixed-window request counter kept in the cache store,
// so the limit holds across replicas when Redis is configured. Callers are
// keyed by user id when signed in, else by client IP as resolved through
// proxies.
type RateLimiter struct {
	store    cache.Store
	log      *logrus.Logger
	proxies  *ProxyTrust
	name     string
	window   time.Duration
	capacity int
	now      func() time.Time
}

func NewRateLimiter(store cache.Store, log *logrus.Logger, proxies *ProxyTrust, name string, window time.Duration, capacity int) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		store:    store,
		log:      log,
		proxies:  proxies,
		name:     name,
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

func (l *RateLimiter) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.capacity <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		bucket := l.now().UnixNano() / int64(l.window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", l.name, l.callerKey(r), bucket)

		count, err := l.store.Incr(r.Context(), key, l.window)
		if err != nil {
			// fail open on cache errors
			l.log.Warnf("Failed to update rate limit counter: %+v", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.capacity) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			response.PlainError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) callerKey(r *http.Request) string {
	if session := SessionFromContext(r.Context()); session != nil {
		return "user:" + session.UserID.String()
	}
	return "ip:" + l.proxies.ClientIP(r)
}
