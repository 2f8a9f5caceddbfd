package auth

import (
	"net/http"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	svc := NewSessionService("test-secret")
	tok, err := svc.Issue(7, "doc@example.com", "")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UID != 7 || claims.Email != "doc@example.com" || claims.Role != "" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != "neuropulse" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestSessionRejectsWrongKey(t *testing.T) {
	tok, err := NewSessionService("key-one").Issue(1, "a@b.c", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSessionService("key-two").Parse(tok); err == nil {
		t.Error("token signed with another key accepted")
	}
}

func TestSessionCookieFlags(t *testing.T) {
	c := SessionCookie("tok", true)
	if c.Name != "session" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
	cl := ClearSessionCookie()
	if cl.MaxAge != -1 {
		t.Errorf("clear cookie MaxAge = %d", cl.MaxAge)
	}
}
