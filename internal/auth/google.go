package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// GooglePayload is the subset of the id_token claims this app uses.
type GooglePayload struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// VerifyGoogleIDToken validates an id_token server-side via Google's
// tokeninfo endpoint and checks aud/iss.
func VerifyGoogleIDToken(ctx context.Context, idToken, clientID string) (GooglePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		tokeninfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return GooglePayload{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return GooglePayload{}, fmt.Errorf("tokeninfo fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GooglePayload{}, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var p GooglePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return GooglePayload{}, fmt.Errorf("tokeninfo parse: %w", err)
	}
	if p.Aud != clientID {
		return GooglePayload{}, errors.New("invalid aud")
	}
	if p.Iss != "accounts.google.com" && p.Iss != "https://accounts.google.com" {
		return GooglePayload{}, errors.New("invalid iss")
	}
	if p.Sub == "" || p.Email == "" {
		return GooglePayload{}, errors.New("invalid google token")
	}
	return p, nil
}
