package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"pcclub/internal/config"
)

// HTTPAuth validates API keys and applies a per-key rate limit. Session and
// user authentication live outside the core; this guards the boundary only.
type HTTPAuth struct {
	cfg     config.APIConfig
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		key := "anonymous"
		if a.cfg.Auth.Enabled {
			header := strings.TrimSpace(a.cfg.Auth.HeaderAPIKey)
			if header == "" {
				header = "x-api-key"
			}

			provided := r.Header.Get(header)
			client, ok := a.lookup(provided)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			key = client.Name
		}

		if !a.limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) lookup(provided string) (config.APIClientKey, bool) {
	if provided == "" {
		return config.APIClientKey{}, false
	}
	for _, client := range a.cfg.Auth.APIKeys {
		if subtle.ConstantTimeCompare([]byte(provided), []byte(client.Key)) == 1 {
			return client, true
		}
	}
	return config.APIClientKey{}, false
}

type rateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg}
}

func (l *rateLimiter) allow(key string) bool {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter).Allow()
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter).Allow()
}
