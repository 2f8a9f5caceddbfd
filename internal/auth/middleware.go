package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AttachUser parses the session cookie (or bearer token) when present and
// puts the identity on the request context. Requests without a valid
// session pass through anonymously.
func AttachUser(s *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := ""
			if c, err := r.Cookie("session"); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}
			if tok != "" {
				if claims, err := s.Parse(tok); err == nil && claims != nil {
					r = r.WithContext(WithUser(r.Context(), UserInfo{
						ID:    claims.UID,
						Email: claims.Email,
						Role:  claims.Role,
					}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Error(w, `{"error":"Login required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOnly admits requests carrying either the static admin bearer token
// or an admin-role session.
func AdminOnly(bearerToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := UserFromContext(r.Context()); ok && u.Role == "admin" {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if bearerToken != "" && strings.HasPrefix(h, "Bearer ") {
				got := strings.TrimPrefix(h, "Bearer ")
				if subtle.ConstantTimeCompare([]byte(got), []byte(bearerToken)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"error":"admin only"}`, http.StatusUnauthorized)
		})
	}
}
