package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/neuropulse/neuropulse-server/internal/auth"
	"github.com/neuropulse/neuropulse-server/internal/cache"
	"github.com/neuropulse/neuropulse-server/internal/user"
)

const loginLockTTL = 5 * time.Second

// GoogleLoginHandler exchanges a verified Google id_token for a session
// cookie, upserting the user row. A short redis lock per Google sub absorbs
// the double-submit that the sign-in button likes to produce.
func GoogleLoginHandler(users *user.Service, sessions *auth.SessionService, rdb *redis.Client, log *logrus.Logger, clientID string, adminEmails []string, secureCookie bool) http.HandlerFunc {
	admins := map[string]bool{}
	for _, e := range adminEmails {
		admins[e] = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDToken string `json:"idToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
			writeError(w, http.StatusBadRequest, "idToken required")
			return
		}

		payload, err := auth.VerifyGoogleIDToken(r.Context(), req.IDToken, clientID)
		if err != nil {
			log.Warnf("auth: google token rejected: %v", err)
			writeError(w, http.StatusUnauthorized, "invalid Google token")
			return
		}

		ok, err := rdb.SetNX(r.Context(), cache.LoginLockKey(payload.Sub), "1", loginLockTTL).Result()
		if err == nil && !ok {
			writeJSON(w, http.StatusAccepted, map[string]any{"ok": false, "message": "login already in progress"})
			return
		}

		u, err := users.UpsertFromGoogle(r.Context(), payload)
		if err != nil {
			log.Errorf("auth: upsert user %s: %v", payload.Sub, err)
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		role := ""
		if admins[u.Email] {
			role = "admin"
		}
		tok, err := sessions.Issue(u.ID, u.Email, role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		http.SetCookie(w, auth.SessionCookie(tok, secureCookie))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": u})
	}
}

// MeHandler returns the signed-in user's profile.
func MeHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Login required")
			return
		}
		if info.ID == 0 {
			// Admin console session without a user row.
			writeJSON(w, http.StatusOK, map[string]any{"email": info.Email, "role": info.Role})
			return
		}
		u, err := users.GetByID(r.Context(), info.ID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Login required")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// LogoutHandler clears the session cookie.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, auth.ClearSessionCookie())
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// AdminLoginHandler authenticates the console's static credentials and
// issues an admin-role session.
func AdminLoginHandler(sessions *auth.SessionService, log *logrus.Logger, adminUser, adminPassHash string, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		if adminPassHash == "" ||
			subtle.ConstantTimeCompare([]byte(req.Username), []byte(adminUser)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(adminPassHash), []byte(req.Password)) != nil {
			log.Warnf("auth: failed admin login for %q", req.Username)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		tok, err := sessions.Issue(0, adminUser, "admin")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
		http.SetCookie(w, auth.SessionCookie(tok, secureCookie))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
