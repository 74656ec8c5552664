package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"Articulate/core/auth"
	"Articulate/logger"

	"github.com/getsentry/sentry-go"
	"golang.org/x/time/rate"
)

// corsMiddleware 允许前端跨域访问 API
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	owner  string // 由 AuthMiddleware 填入
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLogMiddleware 记录每个请求的方法、路径、状态码和耗时
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("duration", time.Since(start)),
			logger.String("owner", rec.owner))
	})
}

// recoverMiddleware turns a panic into a 500 response.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("panic recovered",
					logger.String("path", r.URL.Path),
					logger.Any("panic", p),
					logger.String("stack", string(debug.Stack())))
				writeError(w, http.StatusInternalServerError, fmt.Sprint(p), nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware 解析调用者身份并放入上下文
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.resolver.Resolve(r)
		if err != nil {
			logger.Debug("认证失败", logger.String("path", r.URL.Path), logger.ErrorField(err))
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		if rec, ok := w.(*statusRecorder); ok {
			rec.owner = id.OwnerID
		}
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: id.OwnerID, Email: id.Email})
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

const limiterIdle = 10 * time.Minute

type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按 owner 限流，必须放在 AuthMiddleware 之后
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	owners   map[string]*ownerLimiter
	lastScan time.Time
}

// NewRateLimiter returns a limiter allowing rps requests per second per owner.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		owners:   make(map[string]*ownerLimiter),
		lastScan: time.Now(),
	}
}

// Allow reports whether owner may issue another request now.
func (l *RateLimiter) Allow(owner string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastScan) > limiterIdle {
		for k, v := range l.owners {
			if now.Sub(v.lastSeen) > limiterIdle {
				delete(l.owners, k)
			}
		}
		l.lastScan = now
	}

	ol, ok := l.owners[owner]
	if !ok {
		ol = &ownerLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.owners[owner] = ol
	}
	ol.lastSeen = now
	return ol.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the owner's budget with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.FromContext(r.Context())
		if err == nil && !l.Allow(id.OwnerID) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
