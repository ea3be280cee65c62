package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// RefreshSession exchanges the current session for a fresh one at the
// identity provider. The returned token keeps the old refresh token when the
// provider does not rotate it.
func (c *Client) RefreshSession(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	body := map[string]string{"refresh_token": current.RefreshToken}
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, ErrMalformedResponse
	}

	fresh := &oauth2.Token{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	if out.ExpiresIn > 0 {
		fresh.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return fresh, nil
}
