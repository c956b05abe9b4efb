package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"memgate/pkg/auth"
	"memgate/pkg/common"
)

// projectHeader is the development fallback for scoping requests when
// no bearer token is configured.
const projectHeader = "X-Project-ID"

// Authenticate resolves the project scope for each request. With a
// validator configured, a bearer token is required and the project
// comes from its claims. Without one (development), the project header
// is trusted as-is.
func Authenticate(validator *auth.TokenValidator, limiter *auth.IPRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if limiter != nil {
				allowed, err := limiter.Allow(r.Context(), clientIP)
				if err != nil {
					logger.Warn("rate limiter failure", zap.Error(err))
				}
				if !allowed {
					common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
					return
				}
			}

			if validator == nil {
				project := r.Header.Get(projectHeader)
				next.ServeHTTP(w, r.WithContext(auth.WithProject(r.Context(), project)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				logger.Debug("token rejected",
					zap.String("remoteAddr", clientIP),
					zap.Error(err))
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithProject(r.Context(), claims.Project)))
		})
	}
}

// getClientIP extracts the originating client address, honouring
// proxy headers.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
