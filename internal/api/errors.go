package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork marks transport failures: the request never produced a response.
var ErrNetwork = errors.New("api: network error")

// ErrMalformedResponse marks a 2xx response whose body could not be used.
var ErrMalformedResponse = errors.New("api: malformed response")

// BackendError is a non-2xx response. The body is not parsed for detail.
type BackendError struct {
	Method string
	Path   string
	Status int
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}
