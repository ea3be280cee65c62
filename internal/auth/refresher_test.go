package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestRefresherTickRotatesToken(t *testing.T) {
	bridge := NewBridge()
	bridge.SetSession(&oauth2.Token{AccessToken: "old", RefreshToken: "r1"})

	refresh := func(_ context.Context, current *oauth2.Token) (*oauth2.Token, error) {
		require.Equal(t, "old", current.AccessToken)
		return &oauth2.Token{AccessToken: "new", RefreshToken: "r2"}, nil
	}
	r := NewRefresher(bridge, refresh, time.Minute, nil)
	r.tick()

	tok, ok := bridge.AccessToken()
	require.True(t, ok)
	require.Equal(t, "new", tok)
}

func TestRefresherTickWithoutSession(t *testing.T) {
	bridge := NewBridge()
	called := false
	refresh := func(_ context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
		called = true
		return nil, nil
	}
	NewRefresher(bridge, refresh, time.Minute, nil).tick()
	require.False(t, called)
}

func TestRefresherKeepsTokenOnFailure(t *testing.T) {
	bridge := NewBridge()
	bridge.SetSession(&oauth2.Token{AccessToken: "old"})

	refresh := func(_ context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
		return nil, errors.New("provider down")
	}
	NewRefresher(bridge, refresh, time.Minute, nil).tick()

	tok, ok := bridge.AccessToken()
	require.True(t, ok)
	require.Equal(t, "old", tok)
}

func TestRefresherStartStop(t *testing.T) {
	bridge := NewBridge()
	refresh := func(_ context.Context, current *oauth2.Token) (*oauth2.Token, error) {
		return current, nil
	}
	r := NewRefresher(bridge, refresh, time.Minute, nil)
	require.NoError(t, r.Start())
	r.Stop()
}
