package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// userID extracts the authenticated user's ID from the request context.
// Only valid below the authenticate middleware.
func userID(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(authClaims); ok {
		return claims.UserID
	}
	return ""
}

type authClaims struct {
	UserID   string
	Username string
}

// extractToken pulls the bearer token from the Authorization header, the
// "token" cookie, or a token query parameter (WebSocket clients cannot
// set headers).
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// authenticate validates the session token and stores its claims in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing credentials")
			return
		}
		claims, err := s.jwt.ValidateToken(token)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, authClaims{
			UserID:   claims.UserID,
			Username: claims.Username,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request with its status and duration and feeds
// the telemetry sink when one is configured.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		dur := time.Since(start)
		s.logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", dur.Milliseconds(),
		)
		if s.telemetry != nil {
			s.telemetry.RecordAPIHit(r.Method, r.URL.Path, rec.status, dur)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
