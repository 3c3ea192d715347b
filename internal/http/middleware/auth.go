package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
	"github.com/skyyield/skyyield/pkg/ratelimiter"
)

// AuthMiddleware authenticates API requests and resolves impersonation.
// Repeated invalid tokens from one address trip the limiter and get 429
// before any verification work.
type AuthMiddleware struct {
	authService domain.AuthService
	limiter     *ratelimiter.Limiter
	logger      logger.Logger
}

func NewAuthMiddleware(authService domain.AuthService, limiter *ratelimiter.Limiter, logger logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		limiter:     limiter,
		logger:      logger,
	}
}

// RequireAuth verifies the bearer token and stores the user in the request
// context. When an admin carries a valid impersonation cookie, the
// impersonated partner id is stored alongside.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := remoteIP(r)
		if m.limiter != nil && m.limiter.Blocked(clientIP) {
			w.Header().Set("Retry-After", strconv.Itoa(m.limiter.RetryAfter(clientIP)))
			http.Error(w, "Too many failed attempts", http.StatusTooManyRequests)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		user, err := m.authService.VerifyToken(r.Context(), parts[1])
		if err != nil {
			if m.limiter != nil {
				m.limiter.Record(clientIP)
			}
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}
		if m.limiter != nil {
			m.limiter.Reset(clientIP)
		}

		ctx := context.WithValue(r.Context(), domain.AuthUserKey, user)

		// impersonation cookies from non-admins are ignored, not rejected
		if user.IsAdmin {
			if cookie, err := r.Cookie(domain.ImpersonationCookieName); err == nil {
				partnerID, err := m.authService.VerifyImpersonationToken(cookie.Value)
				if err == nil {
					ctx = context.WithValue(ctx, domain.ImpersonatedPartnerKey, partnerID)
				} else {
					m.logger.WithField("user_id", user.ID).Warn("invalid impersonation cookie")
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// It must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := domain.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
