package auth

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned by Token when no session is currently held.
var ErrNoSession = errors.New("auth: no active session")

// Bridge holds the current access token issued by the identity provider and
// hands it to the HTTP layer. The identity provider calls SetSession on
// sign-in and token refresh and ClearSession on sign-out; the HTTP transport
// reads the bridge on every outgoing request. Having no token is not an
// error: requests simply go out unauthenticated and the backend rejects them.
type Bridge struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// SetSession replaces the held token. A nil token clears the session.
func (b *Bridge) SetSession(token *oauth2.Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *Bridge) ClearSession() {
	b.SetSession(nil)
}

// AccessToken returns the bearer credential to attach, if any.
func (b *Bridge) AccessToken() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token == nil || b.token.AccessToken == "" {
		return "", false
	}
	return b.token.AccessToken, true
}

// Token implements oauth2.TokenSource for callers that need the full token.
func (b *Bridge) Token() (*oauth2.Token, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token == nil {
		return nil, ErrNoSession
	}
	return b.token, nil
}

var _ oauth2.TokenSource = (*Bridge)(nil)
