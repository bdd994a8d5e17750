package webserver

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/auth"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	credentialsKey
)

const expiredMessage = "Your session has expired, please log in again"

func currentSession(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey).(*session.Session)
	if sess == nil {
		return &session.Session{}
	}
	return sess
}

func credentials(r *http.Request) *auth.Context {
	creds, _ := r.Context().Value(credentialsKey).(*auth.Context)
	if creds == nil {
		return auth.NewContext("")
	}
	return creds
}

func (s *WebServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *WebServer) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware loads the caller's session, starting a new one when the
// cookie is missing, unknown or expired
func (s *WebServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if cookie, err := r.Cookie(s.config.Session.CookieName); err == nil {
			sess, err = s.deps.Sessions.Load(r.Context(), cookie.Value)
			if err != nil && !stderrors.Is(err, session.ErrNotFound) {
				s.logger.Error("Failed to load session", zap.Error(err))
				http.Error(w, "Session store unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		if sess == nil {
			sess = session.New(s.config.Session.TTL)
			if err := s.deps.Sessions.Save(r.Context(), sess); err != nil {
				s.logger.Error("Failed to create session", zap.Error(err))
				http.Error(w, "Session store unavailable", http.StatusServiceUnavailable)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     s.config.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.config.Server.SecureCookies,
				SameSite: http.SameSiteLaxMode,
				Expires:  sess.ExpiresAt,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth redirects anonymous callers to the login page. Authenticated
// requests carry an auth.Context whose invalidation clears the stored token.
func (s *WebServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		if sess.AccessToken == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		creds := auth.NewContext(sess.AccessToken)
		sessionID := sess.ID
		storeCtx := context.WithoutCancel(r.Context())
		creds.OnInvalidate(func(reason string) {
			if reason == "" {
				reason = expiredMessage
			}
			_, err := s.deps.Sessions.Update(storeCtx, sessionID, func(sess *session.Session) error {
				sess.InvalidateToken(reason)
				return nil
			})
			if err != nil {
				s.logger.Error("Failed to clear rejected token", zap.Error(err))
			}
		})

		ctx := context.WithValue(r.Context(), credentialsKey, creds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *WebServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warn("Rate limit exceeded", zap.String("ip", clientIP(r)), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many attempts, try again shortly", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ipLimiter keeps one token bucket per client address
type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdle = 10 * time.Minute

func newIPLimiter(perMinute, burst int) *ipLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.limiters, key)
		}
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
