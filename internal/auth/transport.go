package auth

import "net/http"

// Transport injects the bridge's current bearer token into outgoing requests.
// Requests without a session are sent as-is.
type Transport struct {
	Base   http.RoundTripper
	Bridge *Bridge
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	token, ok := t.Bridge.AccessToken()
	if !ok {
		return base.RoundTrip(req)
	}
	// Clone to avoid mutating the caller's request
	cl := req.Clone(req.Context())
	cl.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(cl)
}
