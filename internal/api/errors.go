package api

import (
	"errors"
	"fmt"
)

// ErrDatasetGone signals a 404/410 on dataset metadata: the dataset no longer
// exists on the backend and the active reference should be cleared.
var ErrDatasetGone = errors.New("dataset no longer exists")

// ErrMalformedResponse signals a response body whose shape matches neither of
// the documented forms. The operation fails hard; no partial data is returned.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is any non-2xx response that carries no more specific meaning.
type StatusError struct {
	Status int
	Method string
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}
