package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService mints and parses the site's HS256 session tokens.
type SessionService struct{ hmac []byte }

func NewSessionService(secret string) *SessionService {
	return &SessionService{hmac: []byte(secret)}
}

type Claims struct {
	UID   int64  `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"` // "" for regular users, "admin" for the admin console
	jwt.RegisteredClaims
}

const sessionTTL = 7 * 24 * time.Hour

func (s *SessionService) Issue(uid int64, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UID:   uid,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "neuropulse",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *SessionService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// SessionCookie builds the session cookie carrying tok.
func SessionCookie(tok string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     "session",
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL / time.Second),
	}
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:    "session",
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	}
}
